package server

import (
	"net/url"
	"strings"
	"time"

	"kbomate/internal/middleware"
	"kbomate/internal/models"
	"kbomate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles POST /api/auth/signup
// @Summary User signup
// @Description Register an email/password account and sign it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,nickname=string} true "Signup request"
// @Success 201 {object} service.Session
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	sess, err := s.authService.SignUp(c.UserContext(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// SignIn handles POST /api/auth/signin
// @Summary Email sign-in
// @Description Authenticate and return a token plus the landing page for the user's role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.Session
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	sess, err := s.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess)
}

// SignOut handles POST /api/auth/signout
// @Summary Sign out
// @Description Revoke the current token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/signout [post]
func (s *Server) SignOut(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExpiresAt").(time.Time)
	if err := s.authService.SignOut(c.UserContext(), jti, exp); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// GetSession handles GET /api/auth/session
// @Summary Current session
// @Description Re-reads the signed-in user and role. Without a valid token the session is empty.
// @Tags auth
// @Produce json
// @Success 200 {object} service.Session
// @Router /auth/session [get]
func (s *Server) GetSession(c *fiber.Ctx) error {
	empty := &service.Session{Redirect: service.RedirectHome}

	token, err := middleware.BearerToken(c)
	if err != nil {
		return c.JSON(empty)
	}
	claims, err := s.authService.ParseToken(c.UserContext(), token)
	if err != nil {
		return c.JSON(empty)
	}

	sess, err := s.authService.Session(c.UserContext(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess)
}

// OAuthStart handles GET /api/auth/oauth/:provider
// @Summary Start OAuth sign-in
// @Tags auth
// @Param provider path string true "Provider (google)"
// @Success 302
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/oauth/{provider} [get]
func (s *Server) OAuthStart(c *fiber.Ctx) error {
	authURL, err := s.authService.OAuthStart(c.UserContext(), c.Params("provider"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Redirect(authURL, fiber.StatusFound)
}

// OAuthCallback handles GET /api/auth/oauth/:provider/callback
// @Summary OAuth callback
// @Description Exchanges the code and redirects to the site with the token in the URL fragment
// @Tags auth
// @Param code query string false "Authorization code"
// @Param state query string false "State"
// @Success 302
// @Router /auth/oauth/{provider}/callback [get]
func (s *Server) OAuthCallback(c *fiber.Ctx) error {
	site := strings.TrimRight(s.config.SiteURL, "/")
	code := c.Query("code")
	if code == "" {
		return c.Redirect(site+service.RedirectHome, fiber.StatusFound)
	}

	sess, err := s.authService.OAuthCallback(c.UserContext(), code, c.Query("state"))
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "oauth callback failed", "error", err)
		q := url.Values{"auth_error": {strings.ToLower(models.ErrorCode(err))}}
		return c.Redirect(site+service.RedirectHome+"?"+q.Encode(), fiber.StatusFound)
	}

	frag := url.Values{"token": {sess.Token}}
	return c.Redirect(site+sess.Redirect+"#"+frag.Encode(), fiber.StatusFound)
}
