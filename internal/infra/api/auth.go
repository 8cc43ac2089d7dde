package api

import (
	"context"
	"net/http"

	authuc "example.com/storefront/internal/usecase/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Answer   string `json:"answer"`
}

type forgotPasswordRequest struct {
	Phone       string `json:"phone"`
	NewPassword string `json:"newPassword"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*authuc.Credentials, error) {
	var resp authResponse
	err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/api/v1/auth/login",
		body:     loginRequest{Email: email, Password: password},
		fallback: "Login failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.credentials(), nil
}

func (c *Client) Register(ctx context.Context, in authuc.RegisterInput) (*authuc.Credentials, error) {
	var resp authResponse
	err := c.do(ctx, call{
		op:     "register",
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body: registerRequest{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Phone:    in.Phone,
			Address:  in.Address,
			Answer:   in.Answer,
		},
		fallback: "Registration failed",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.credentials(), nil
}

// ForgotPassword resets the password of the account registered with phone
// and returns the API's confirmation message.
func (c *Client) ForgotPassword(ctx context.Context, phone, newPassword string) (string, error) {
	var resp envelope
	err := c.do(ctx, call{
		op:       "forgot_password",
		method:   http.MethodPost,
		path:     "/api/v1/auth/forgot-password",
		body:     forgotPasswordRequest{Phone: phone, NewPassword: newPassword},
		fallback: "Password reset failed",
	}, &resp)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(resp.Message, "Password reset successful"), nil
}
