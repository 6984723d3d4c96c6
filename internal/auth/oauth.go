// File: internal/auth/oauth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/platform/crypto"
)

const oauthStateMaxAge = 10 * 60

// GoogleOAuth runs the authorization code flow against Google.
type GoogleOAuth interface {
	AuthCodeURL(state string) string
	// ExchangeIDToken trades an authorization code for Google's OpenID Connect id_token.
	ExchangeIDToken(ctx context.Context, code string) (string, error)
}

type googleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth builds the Google OAuth client from config.
func NewGoogleOAuth(cfg *config.Config) GoogleOAuth {
	return &googleOAuth{conf: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}}
}

func (g *googleOAuth) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (g *googleOAuth) ExchangeIDToken(ctx context.Context, code string) (string, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchanging google auth code: %w", err)
	}
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("google token response has no id_token")
	}
	return idToken, nil
}

// setOAuthStateCookie stores a fresh state value for the callback to check.
func setOAuthStateCookie(c *gin.Context, cfg *config.Config) (string, error) {
	state, err := crypto.RandomToken(32)
	if err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.OAuthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		Secure:   cfg.OAuthCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// consumeOAuthStateCookie reads the stored state and clears the cookie.
func consumeOAuthStateCookie(c *gin.Context, cfg *config.Config) (string, error) {
	cookie, err := c.Request.Cookie(cfg.OAuthStateCookieName)
	if err != nil {
		return "", fmt.Errorf("%s cookie not found: %w", cfg.OAuthStateCookieName, err)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.OAuthStateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   cfg.OAuthCookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return cookie.Value, nil
}
