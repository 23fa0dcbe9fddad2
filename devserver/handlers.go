package devserver

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type grantResponse struct {
	Token string          `json:"token"`
	User  session.Session `json:"user"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, req.Email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				abort(c, http.StatusTooManyRequests, "too many attempts, try again later")
				return
			}
			// Throttle outages must not lock everyone out.
			s.log.Warn().Err(err).Msg("login throttle unavailable")
		}
	}

	user, hash, err := s.users.ByEmail(req.Email)
	ok := false
	if err == nil {
		ok, err = s.hasher.Verify(req.Password, hash)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored hash unreadable")
		}
	}
	if !ok {
		if s.limiter != nil {
			if err := s.limiter.RecordFailure(ctx, req.Email, ip); err != nil {
				s.log.Warn().Err(err).Msg("record login failure")
			}
		}
		abort(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, req.Email, ip); err != nil {
			s.log.Warn().Err(err).Msg("reset login throttle")
		}
	}

	s.grant(c, http.StatusOK, user)
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "fill in all fields with a valid email")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, password.ErrTooShort) {
		abort(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("hash password")
		abort(c, http.StatusInternalServerError, "internal server error")
		return
	}

	now := s.now().UTC()
	user := session.Session{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      session.RoleUser,
		Plan:      session.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(user, hash); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			abort(c, http.StatusConflict, "email already registered")
			return
		}
		abort(c, http.StatusInternalServerError, "internal server error")
		return
	}

	s.log.Info().Str("user_id", user.ID).Msg("account created")
	s.grant(c, http.StatusCreated, user)
}

func (s *Server) grant(c *gin.Context, status int, user session.Session) {
	token, _, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		s.log.Error().Err(err).Msg("issue token")
		abort(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(status, grantResponse{Token: token, User: user})
}

func (s *Server) me(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		abort(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := s.users.ByID(claims.UID)
	if err != nil {
		abort(c, http.StatusUnauthorized, "account no longer exists")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateMe(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		abort(c, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var patch session.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	// Role, plan and credits are managed by staff and billing.
	if patch.Role != nil || patch.Plan != nil || patch.Credits != nil {
		abort(c, http.StatusForbidden, "field not editable")
		return
	}

	now := s.now().UTC()
	patch.UpdatedAt = &now

	user, err := s.users.Update(claims.UID, patch)
	switch {
	case errors.Is(err, ErrNotFound):
		abort(c, http.StatusUnauthorized, "account no longer exists")
	case errors.Is(err, ErrEmailTaken):
		abort(c, http.StatusConflict, "email already registered")
	case err != nil:
		abort(c, http.StatusInternalServerError, "internal server error")
	default:
		c.JSON(http.StatusOK, user)
	}
}
