package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/vmatveev/registerd/internal/common"
	"github.com/vmatveev/registerd/internal/server/models"
	"github.com/vmatveev/registerd/internal/server/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Register string `json:"register"`
	Date     string `json:"date"`
	Label    string `json:"label"`
}

// registerJSON is the wire shape of a register; the owner id stays internal.
type registerJSON struct {
	ID       int64  `json:"id"`
	Register string `json:"register"`
	Date     string `json:"date"`
	Label    string `json:"label"`
}

func toRegisterJSON(r *models.Register) registerJSON {
	return registerJSON{ID: r.ID, Register: r.Register, Date: r.Date, Label: r.Label}
}

// signUp handles POST /api/v1/users: create the account and log it in.
func (s *Server) signUp(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)

	if errs := validateCredentials(req); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	user, err := s.users.SignUp(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"errors": gin.H{"username": []string{"username taken"}},
			})
			return
		}
		s.internalError(c, err)
		return
	}

	if err := establishSession(c, user.ID); err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{"id": user.ID, "username": user.Username},
	})
}

// login handles POST /api/v1/login. Bad credentials of any kind, including a
// missing or unknown username, answer the same way.
func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)

	userID, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false})
			return
		}
		s.internalError(c, err)
		return
	}

	if err := establishSession(c, userID); err != nil {
		s.internalError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// checkAuth handles GET /api/v1/checkAuth.
func (s *Server) checkAuth(c *gin.Context) {
	if _, ok := currentUserID(c); ok {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusUnauthorized)
}

// logout handles POST /api/v1/logout.
func (s *Server) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		s.internalError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// listRegisters handles GET /api/v1/registers.
func (s *Server) listRegisters(c *gin.Context) {
	userID := c.GetInt64(ContextUserIDKey)

	regs, err := s.registers.List(c.Request.Context(), userID)
	if err != nil {
		s.internalError(c, err)
		return
	}

	items := make([]registerJSON, 0, len(regs))
	for _, r := range regs {
		items = append(items, toRegisterJSON(r))
	}

	c.JSON(http.StatusOK, gin.H{"registers": items})
}

// createRegister handles POST /api/v1/registers. The owner is always the
// session's user id, never the payload.
func (s *Server) createRegister(c *gin.Context) {
	userID := c.GetInt64(ContextUserIDKey)

	var req registerRequest
	_ = c.ShouldBindJSON(&req)

	if req.Register == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{"register": []string{"can't be blank"}},
		})
		return
	}

	reg, err := s.registers.Create(c.Request.Context(), userID, services.RegisterInput{
		Register: req.Register,
		Date:     req.Date,
		Label:    req.Label,
	})
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"register": toRegisterJSON(reg)})
}

// getRegister handles GET /api/v1/registers/:id. A malformed or foreign id
// reads as not-found, never as forbidden.
func (s *Server) getRegister(c *gin.Context) {
	userID := c.GetInt64(ContextUserIDKey)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	reg, err := s.registers.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"register": toRegisterJSON(reg)})
}

// --- helpers ---

func validateCredentials(req credentialsRequest) map[string][]string {
	errs := make(map[string][]string)
	if req.Username == "" {
		errs["username"] = append(errs["username"], "can't be blank")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "can't be blank")
	}
	return errs
}

func establishSession(c *gin.Context, userID int64) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, userID)
	return session.Save()
}

// internalError logs the fault and answers with a generic 500; internal error
// text never reaches the client.
func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error(c.Request.Context(), "request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
