package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/generator"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

const testSecret = "test-secret"

type decodedResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) decodedResponse {
	t.Helper()
	var resp decodedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type fakeStore struct {
	rosters  map[int64]*domain.Roster
	soldiers map[int64]*domain.Soldier
	saved    *domain.RosterAssignments
}

func (s *fakeStore) GetRosterByID(id int64) (*domain.Roster, error) {
	roster, ok := s.rosters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return roster, nil
}

func (s *fakeStore) GetSoldiersByIDs(ids []int64) ([]*domain.Soldier, error) {
	soldiers := make([]*domain.Soldier, 0, len(ids))
	for _, id := range ids {
		if soldier, ok := s.soldiers[id]; ok {
			soldiers = append(soldiers, soldier)
		}
	}
	return soldiers, nil
}

func (s *fakeStore) GetOverlappingAppointments(soldierIDs []int64, start, end domain.Date) ([]*domain.Appointment, error) {
	return nil, nil
}

func (s *fakeStore) GetHolidaysBetween(start, end domain.Date) ([]*domain.Holiday, error) {
	return nil, nil
}

func (s *fakeStore) GetRosterBaselines(rosterID int64) (map[int64]int, error) {
	return nil, nil
}

func (s *fakeStore) SaveRosterAssignments(result *domain.RosterAssignments, baselines []domain.RosterBaseline) error {
	s.saved = result
	return nil
}

func testRoster() *domain.Roster {
	start := domain.NewDate(2024, time.January, 1)
	return &domain.Roster{
		ID:   1,
		Name: "Guard",
		Config: domain.RosterConfig{
			StartDate:      start,
			EndDate:        start.AddDays(2),
			NatureOfDuty:   "Guard Detail",
			SoldiersPerDay: 1,
		},
		Exceptions: domain.ExceptionMap{},
		SoldierIDs: []int64{1, 2},
	}
}

func newTestHandler(t *testing.T, issuer string) (*Handler, *fakeStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.Issuer = issuer
	cfg.RabbitMQ.PublishTimeout = 1

	store := &fakeStore{
		rosters: map[int64]*domain.Roster{1: testRoster()},
		soldiers: map[int64]*domain.Soldier{
			1: {ID: 1, FirstName: "John", LastName: "Smith", Rank: "PFC", DaysSinceLastDuty: 3, IsActive: true},
			2: {ID: 2, FirstName: "Mary", LastName: "Jones", Rank: "SPC", DaysSinceLastDuty: 5, IsActive: true},
		},
	}

	parameters := scheduler.DefaultParameters()
	gen := generator.New(store, parameters)

	h, err := NewHandler(cfg, nil, gen, parameters, nil)
	require.NoError(t, err)
	return h, store
}

func signToken(t *testing.T, method jwt.SigningMethod, claims AuthClaims) string {
	t.Helper()
	ss, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return ss
}

func validClaims(role domain.Role) AuthClaims {
	return AuthClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAuth(t *testing.T) {
	echo := func(h *Handler) http.Handler {
		return h.auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.successResponse(w, r, "ok", map[string]string{
				"role": r.Context().Value(RoleCtxKey).(string),
				"sub":  r.Context().Value(SubCtxKey).(string),
			})
		}))
	}

	expired := validClaims(domain.RoleEditor)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name        string
		issuer      string
		prepare     func(r *http.Request)
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "no token",
			prepare:     func(r *http.Request) {},
			wantMessage: "用户未登录",
		},
		{
			name: "malformed authorization header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
			wantMessage: "用户未登录",
		},
		{
			name: "bearer token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleEditor)))
			},
			wantSuccess: true,
		},
		{
			name: "cookie token",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleEditor))})
			},
			wantSuccess: true,
		},
		{
			name: "unexpected signing method",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS384, validClaims(domain.RoleEditor)))
			},
			wantMessage: "无效的令牌",
		},
		{
			name: "expired",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, expired))
			},
			wantMessage: "无效的令牌",
		},
		{
			name:   "issuer matches",
			issuer: "identity",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleEditor)))
			},
			wantSuccess: true,
		},
		{
			name:   "issuer mismatch",
			issuer: "someone-else",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleEditor)))
			},
			wantMessage: "无效的令牌",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, tt.issuer)

			req := httptest.NewRequest(http.MethodGet, "/rosters", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			echo(h).ServeHTTP(rec, req)

			resp := decode(t, rec)
			require.Equal(t, tt.wantSuccess, resp.Success, resp.Message)
			if tt.wantSuccess {
				require.JSONEq(t, `{"role":"editor","sub":"42"}`, string(resp.Data))
			} else {
				require.Equal(t, tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestRequiredRole(t *testing.T) {
	h, _ := newTestHandler(t, "")
	protected := h.auth(h.RequiredRole([]domain.Role{domain.RoleEditor})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.successResponse(w, r, "ok", nil)
	})))

	for _, tt := range []struct {
		role        domain.Role
		wantSuccess bool
	}{
		{domain.RoleEditor, true},
		{domain.RoleViewer, false},
		{domain.Role("admin"), false},
	} {
		req := httptest.NewRequest(http.MethodPost, "/rosters", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims(tt.role)))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.Equal(t, tt.wantSuccess, resp.Success, tt.role)
		if !tt.wantSuccess {
			require.Equal(t, "权限不足", resp.Message)
		}
	}
}

func TestGenerationError(t *testing.T) {
	h, _ := newTestHandler(t, "")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", fmt.Errorf("读取排班表 9 失败: %w", sql.ErrNoRows), http.StatusOK, "排班表不存在"},
		{"configuration", fmt.Errorf("rankRequirements[0]: %w", scheduler.ErrConfiguration), http.StatusOK, "rankRequirements[0]: 排班配置错误"},
		{"understaffed", fmt.Errorf("2024-01-01: %w", scheduler.ErrUnderstaffed), http.StatusOK, "2024-01-01: 可用人数不足"},
		{"invariant", fmt.Errorf("x: %w", scheduler.ErrInvariantViolation), http.StatusInternalServerError, "服务器内部错误"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "服务器内部错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", nil)
			rec := httptest.NewRecorder()
			h.generationError(rec, req, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.False(t, resp.Success)
			require.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestGenerateRoster(t *testing.T) {
	h, store := newTestHandler(t, "")
	h.Mux.With(h.auth, h.RequiredRole([]domain.Role{domain.RoleEditor}), func(next http.Handler) http.Handler {
		// 测试中没有数据库，直接把排班表放进 context
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			roster, err := store.GetRosterByID(1)
			require.NoError(t, err)
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, RosterCtx, roster)))
		})
	}).Post("/rosters/1/generate", h.GenerateRoster)

	token := signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleEditor))

	t.Run("preview", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.True(t, resp.Success, resp.Message)

		var outcome generator.Outcome
		require.NoError(t, json.Unmarshal(resp.Data, &outcome))
		require.Equal(t, int64(1), outcome.RosterID)
		require.False(t, outcome.Persisted)
		require.Len(t, outcome.Result.Assignments, 6)
		require.Nil(t, store.saved)

		// 距上次值班天数多的士兵先值班，两人轮流
		duty := make(map[domain.Date]int64)
		for _, a := range outcome.Result.Assignments {
			if a.IsDuty {
				duty[a.Date] = a.SoldierID
			}
		}
		start := domain.NewDate(2024, time.January, 1)
		require.Equal(t, map[domain.Date]int64{start: 2, start.AddDays(1): 1, start.AddDays(2): 2}, duty)
	})

	t.Run("persist", func(t *testing.T) {
		body := bytes.NewBufferString(`{"persist": true}`)
		req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.True(t, resp.Success, resp.Message)
		require.NotNil(t, store.saved)
		require.Equal(t, int64(1), store.saved.RosterID)
	})

	t.Run("unknown other roster", func(t *testing.T) {
		body := bytes.NewBufferString(`{"otherRosterIDs": [7]}`)
		req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.False(t, resp.Success)
		require.Equal(t, "排班表不存在", resp.Message)
	})

	t.Run("async without queue", func(t *testing.T) {
		body := bytes.NewBufferString(`{"async": true}`)
		req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", body)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.False(t, resp.Success)
		require.Equal(t, "异步生成暂不可用", resp.Message)
	})

	t.Run("viewer cannot generate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/rosters/1/generate", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, validClaims(domain.RoleViewer)))
		rec := httptest.NewRecorder()
		h.Mux.ServeHTTP(rec, req)

		resp := decode(t, rec)
		require.False(t, resp.Success)
		require.Equal(t, "权限不足", resp.Message)
	})
}
