package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    dto.ErrorCode   `json:"code"`
		Message string          `json:"message"`
		Field   string          `json:"field"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.False(t, env.Success)
	return env
}

func newJWT(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: exp, TokenIssuer: "test"})
}

func bearer(t *testing.T, svc *auth.JWTService, userID int64, role models.RoleType) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTAuth(t *testing.T) {
	svc := newJWT(time.Hour)
	m := NewAuthMiddleware(svc)

	router := gin.New()
	router.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	tests := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"valid", bearer(t, svc, 7, models.RoleStudent), http.StatusOK, ""},
		{"missing", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"expired", bearer(t, newJWT(-time.Minute), 7, models.RoleStudent), http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"foreign secret", bearer(t, auth.NewJWTService(auth.JWTConfig{SecretKey: "x", AccessTokenExp: time.Hour, TokenIssuer: "test"}), 7, models.RoleStudent), http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
				return
			}
			assert.JSONEq(t, `{"id":7,"role":"STUDENT"}`, w.Body.String())
		})
	}
}

func TestStudentOwnership(t *testing.T) {
	svc := newJWT(time.Hour)
	m := NewAuthMiddleware(svc)

	router := gin.New()
	router.GET("/students/:studentId/stats", m.JWTAuth(), m.StudentOwnership(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		userID int64
		role   models.RoleType
		status int
	}{
		{"own records", "/students/7/stats", 7, models.RoleStudent, http.StatusNoContent},
		{"other student", "/students/8/stats", 7, models.RoleStudent, http.StatusForbidden},
		{"advisor", "/students/8/stats", 99, models.RoleInstructor, http.StatusNoContent},
		{"bad id", "/students/abc/stats", 7, models.RoleStudent, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, svc, tt.userID, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	svc := newJWT(time.Hour)
	m := NewAuthMiddleware(svc)

	router := gin.New()
	router.POST("/advisors-only", m.JWTAuth(), m.RoleRequired(models.RoleInstructor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, status := range map[models.RoleType]int{
		models.RoleInstructor: http.StatusNoContent,
		models.RoleStudent:    http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/advisors-only", nil)
		req.Header.Set("Authorization", bearer(t, svc, 1, role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, string(role))
	}
}

func TestHandleAPIError(t *testing.T) {
	cs1 := models.Course{ID: 1, Code: "CS1", Name: "Programming I", Credits: 6, Semester: 1}
	cs2 := models.Course{ID: 2, Code: "CS2", Name: "Programming II", Credits: 6, Semester: 2}

	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
		field  string
	}{
		{"validation", apperrors.NewValidationError("grade", "must be between 0 and 20"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "grade"},
		{"wrapped validation", fmt.Errorf("saving: %w", apperrors.NewValidationError("term", "too long")), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "term"},
		{"course not found", apperrors.NewNotFoundError(apperrors.ErrCourseNotFound, "course", 9), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{"prerequisites", &engine.PrerequisiteError{Course: cs2, Missing: []models.Course{cs1}}, http.StatusUnprocessableEntity, dto.ErrorCodePrerequisitesNotMet, ""},
		{"contradiction", &engine.ContradictionError{Contradictions: []engine.Contradiction{{Course: cs1, Prerequisite: cs2}}}, http.StatusUnprocessableEntity, dto.ErrorCodeBatchContradiction, ""},
		{"forbidden", apperrors.NewForbiddenError("goal belongs to another student"), http.StatusForbidden, dto.ErrorCodeForbidden, ""},
		{"conflict", apperrors.NewConflictError("version mismatch"), http.StatusConflict, dto.ErrorCodeConflict, ""},
		{"already exists", apperrors.NewAlreadyExistsError("curriculum code CS is used by another degree"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, ""},
		{"cycle", &engine.CycleError{Path: []string{"A", "B", "A"}}, http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			env := decodeError(t, w)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.field, env.Error.Field)
		})
	}
}

func TestPrerequisiteErrorDetails(t *testing.T) {
	cs1 := models.Course{ID: 1, Code: "CS1", Name: "Programming I", Credits: 6, Semester: 1}
	cs2 := models.Course{ID: 2, Code: "CS2", Name: "Programming II", Credits: 6, Semester: 2}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", nil)
	HandleAPIError(c, &engine.PrerequisiteError{Course: cs2, Missing: []models.Course{cs1}})

	var details prerequisiteDetails
	require.NoError(t, json.Unmarshal(decodeError(t, w).Error.Details, &details))
	assert.Equal(t, "CS2", details.Course.Code)
	require.Len(t, details.Missing, 1)
	assert.Equal(t, "CS1", details.Missing[0].Code)
	require.Len(t, details.Suggestions, 1)
	assert.Equal(t, "CS1", details.Suggestions[0].Course.Code)
}

func TestBindAndValidate(t *testing.T) {
	router := gin.New()
	router.POST("/import", func(c *gin.Context) {
		var req dto.ImportCoursesRequest
		if !BindAndValidate(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"valid", `{"courseIds":[1,2],"term":"2024-1"}`, http.StatusOK, ""},
		{"missing ids", `{"term":"2024-1"}`, http.StatusBadRequest, "courseIds"},
		{"non positive id", `{"courseIds":[1,0]}`, http.StatusBadRequest, "courseIds[1]"},
		{"malformed json", `{"courseIds":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				env := decodeError(t, w)
				assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
				assert.Equal(t, tt.field, env.Error.Field)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf strings.Builder
	lgr := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestLogger(lgr))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	requestID := w.Header().Get(RequestIDHeader)
	assert.Len(t, requestID, 36)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &line))
	assert.Equal(t, requestID, line["requestId"])
	assert.Equal(t, "/ping", line["path"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
}
