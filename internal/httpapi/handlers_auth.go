package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/bookcatalog/internal/auth"
	"github.com/dshills/bookcatalog/internal/catalog"
)

func (s *Server) signup(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.deps.Auth.Signup(c.Request.Context(), req.Username, req.Password); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User registered successfully"})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	token, err := s.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// createAdmin bootstraps the first account without credentials.
// Once any user exists only an admin may create another admin.
func (s *Server) createAdmin(c *gin.Context) {
	users, err := s.deps.Store.ListUsers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(users) > 0 {
		if _, ok := s.requireUser(c, auth.PermAdmin); !ok {
			return
		}
	}

	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.deps.Auth.CreateAdmin(c.Request.Context(), req.Username, req.Password); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Admin user created successfully"})
}

// logout is stateless; clients discard their token
func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "Logout handled on client side (JWT invalidation)"})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.deps.Catalog.ListUsers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUser(u)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	user, err := s.deps.Auth.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(req.RoleNames) > 0 {
		if _, err := s.deps.Catalog.UpdateUser(c.Request.Context(), user.ID, catalog.UserUpdate{RoleNames: &req.RoleNames}); err != nil {
			s.writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, createUserResponse{Message: "User created successfully", UserID: user.ID})
}

func (s *Server) getUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	user, err := s.deps.Catalog.GetUser(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(user))
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req catalog.UserUpdate
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.deps.Catalog.UpdateUser(c.Request.Context(), id, req); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.deps.Catalog.DeleteUser(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRoles(c *gin.Context) {
	roles, err := s.deps.Catalog.ListRoles(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]roleResponse, len(roles))
	for i, r := range roles {
		out[i] = roleResponse{
			ID:        r.ID,
			Name:      r.Name,
			CanRead:   r.CanRead,
			CanWrite:  r.CanWrite,
			CanDelete: r.CanDelete,
			IsAdmin:   r.IsAdmin,
		}
	}
	c.JSON(http.StatusOK, out)
}
