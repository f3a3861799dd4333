package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

type companyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id,omitempty"`
	TaskTypes []string  `json:"task_types"`
	CreatedAt time.Time `json:"created_at"`
}

type userResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// requireOwnCompany rejects cross-tenant reads.
func requireOwnCompany(c echo.Context, companyID string) error {
	if c.Get("company_id").(string) != companyID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}
	return nil
}

func (s *Server) handleCompanyGet(c echo.Context) error {
	companyID := c.Param("id")
	if err := requireOwnCompany(c, companyID); err != nil {
		return err
	}

	var resp companyResponse
	var ownerID *string
	err := s.db.QueryRow(`
		SELECT id, name, owner_id, task_types, created_at
		FROM companies WHERE id = $1`,
		companyID,
	).Scan(&resp.ID, &resp.Name, &ownerID, pq.Array(&resp.TaskTypes), &resp.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}
	if ownerID != nil {
		resp.OwnerID = *ownerID
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCompanyUsers(c echo.Context) error {
	companyID := c.Param("id")
	if err := requireOwnCompany(c, companyID); err != nil {
		return err
	}

	rows, err := s.db.Query(`
		SELECT id, company_id, name, email, phone, role, avatar_url, created_at
		FROM users WHERE company_id = $1
		ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	users := []userResponse{}
	for rows.Next() {
		var u userResponse
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.AvatarURL, &u.CreatedAt); err != nil {
			c.Logger().Error("db error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		users = append(users, u)
	}

	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCompanyTaskTypes(c echo.Context) error {
	companyID := c.Param("id")
	if err := requireOwnCompany(c, companyID); err != nil {
		return err
	}

	var taskTypes []string
	err := s.db.QueryRow(`
		SELECT task_types FROM companies WHERE id = $1`,
		companyID,
	).Scan(pq.Array(&taskTypes))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}
	if taskTypes == nil {
		taskTypes = []string{}
	}

	return c.JSON(http.StatusOK, map[string]any{"task_types": taskTypes})
}

func (s *Server) handleUserGet(c echo.Context) error {
	var u userResponse
	err := s.db.QueryRow(`
		SELECT id, company_id, name, email, phone, role, avatar_url, created_at
		FROM users WHERE id = $1 AND company_id = $2`,
		c.Param("id"), c.Get("company_id").(string),
	).Scan(&u.ID, &u.CompanyID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, u)
}
