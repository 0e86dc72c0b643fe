package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	"github.com/batala/site-server-go/internal/config"
	"github.com/batala/site-server-go/internal/model"
)

// AdminStatus is the toggle-active response.
type AdminStatus struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// ResetTarget is the admin a reset token belongs to.
type ResetTarget struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Login authenticates and stores the access token and refresh cookie.
func (a *Agent) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	req, err := jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return nil, err
	}

	resp, err := a.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var refreshToken string
	for _, c := range resp.Cookies() {
		if c.Name == config.RefreshCookieName {
			refreshToken = c.Value
		}
	}

	var out struct {
		Token string         `json:"token"`
		Admin model.Identity `json:"admin"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		return nil, err
	}

	if err := a.store.Save(Session{
		AccessToken:  out.Token,
		RefreshToken: refreshToken,
		Admin:        &out.Admin,
	}); err != nil {
		return nil, err
	}
	return &out.Admin, nil
}

// Logout tells the server to drop the cookie and forgets the local session
// even if the server cannot be reached.
func (a *Agent) Logout(ctx context.Context) error {
	req, _ := jsonRequest(http.MethodPost, "/api/auth/logout", nil, false)
	var callErr error
	if resp, err := a.send(ctx, req); err != nil {
		callErr = err
	} else {
		callErr = decodeResponse(resp, nil)
	}
	if err := a.store.Clear(); err != nil {
		return err
	}
	return callErr
}

func (a *Agent) Session() (Session, error) {
	return a.store.Load()
}

func (a *Agent) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := a.Do(ctx, http.MethodGet, "/api/admins", nil, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (a *Agent) InviteAdmin(ctx context.Context, email string) (*model.Admin, error) {
	var out struct {
		Admin model.Admin `json:"admin"`
	}
	if err := a.Do(ctx, http.MethodPost, "/api/admins", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out.Admin, nil
}

func (a *Agent) ToggleAdminActive(ctx context.Context, id int64) (*AdminStatus, error) {
	var out AdminStatus
	if err := a.Do(ctx, http.MethodPatch, fmt.Sprintf("/api/admins/%d/toggle-active", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Agent) ResendInvite(ctx context.Context, id int64) error {
	return a.Do(ctx, http.MethodPost, fmt.Sprintf("/api/admins/%d/resend-invite", id), nil, nil)
}

func (a *Agent) VerifyResetToken(ctx context.Context, resetToken string) (*ResetTarget, error) {
	req, err := jsonRequest(http.MethodPost, "/api/admins/verify-token", map[string]string{"token": resetToken}, false)
	if err != nil {
		return nil, err
	}
	var out struct {
		Valid bool        `json:"valid"`
		Admin ResetTarget `json:"admin"`
	}
	if err := a.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out.Admin, nil
}

func (a *Agent) SetPassword(ctx context.Context, resetToken, password string) error {
	req, err := jsonRequest(http.MethodPatch, "/api/admins/set-password", map[string]string{
		"token":    resetToken,
		"password": password,
	}, false)
	if err != nil {
		return err
	}
	return a.do(ctx, req, nil)
}

func (a *Agent) ChangePassword(ctx context.Context, id int64, current, next string) error {
	return a.Do(ctx, http.MethodPatch, fmt.Sprintf("/api/admins/%d/password", id), map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	}, nil)
}

// GetSite reads the public site content; no token is sent.
func (a *Agent) GetSite(ctx context.Context) (*model.Site, error) {
	req, _ := jsonRequest(http.MethodGet, "/api/site", nil, false)
	var site model.Site
	if err := a.do(ctx, req, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSection replaces a section's settings. visible is left unchanged
// when nil.
func (a *Agent) UpdateSection(ctx context.Context, sectionID string, settings any, visible *bool) (*model.Section, error) {
	body := map[string]any{"settings": settings}
	if visible != nil {
		body["visible"] = *visible
	}
	var section model.Section
	if err := a.Do(ctx, http.MethodPatch, "/api/site/sections/"+url.PathEscape(sectionID), body, &section); err != nil {
		return nil, err
	}
	return &section, nil
}

func (a *Agent) ReorderSectionItems(ctx context.Context, sectionID string, fromID, toID model.ItemID) (*model.Section, error) {
	var section model.Section
	err := a.Do(ctx, http.MethodPost, "/api/site/sections/"+url.PathEscape(sectionID)+"/reorder", map[string]model.ItemID{
		"fromId": fromID,
		"toId":   toID,
	}, &section)
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (a *Agent) ListMedia(ctx context.Context) ([]model.Media, error) {
	var items []model.Media
	if err := a.Do(ctx, http.MethodGet, "/api/media", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UploadMedia sends r as the "file" part of a multipart upload. The body is
// buffered so the request can be replayed after a refresh.
func (a *Agent) UploadMedia(ctx context.Context, filename string, r io.Reader) (*model.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mimeType := mime.TypeByExtension(filepath.Ext(filename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": filepath.Base(filename),
	}))
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish upload body: %w", err)
	}

	req := request{
		method:      http.MethodPost,
		path:        "/api/media",
		contentType: mw.FormDataContentType(),
		payload:     buf.Bytes(),
		authed:      true,
	}
	var media model.Media
	if err := a.do(ctx, req, &media); err != nil {
		return nil, err
	}
	return &media, nil
}

func (a *Agent) DeleteMedia(ctx context.Context, id int64) error {
	return a.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/media/%d", id), nil, nil)
}

func (a *Agent) SendContact(ctx context.Context, msg ContactMessage) error {
	req, err := jsonRequest(http.MethodPost, "/api/contact", msg, false)
	if err != nil {
		return err
	}
	return a.do(ctx, req, nil)
}
