package server

import (
	"context"
	"strings"

	"quicknotes/internal/config"
	apperrors "quicknotes/internal/errors"
	"quicknotes/internal/events"
	"quicknotes/internal/ratelimit"
	"quicknotes/internal/upstream/notion"

	log "github.com/sirupsen/logrus"
)

// Service wires the config store, the Notion client and the event hub
// into the operations the API exposes. Every operation that talks to
// Notion finishes by pushing the credential's rate limit status onto the
// hub so connected clients always see the current quota.
type Service struct {
	store  *config.Store
	client *notion.Client
	hub    *events.Hub
}

// RateLimitStatus is the quota snapshot pushed to clients and served on
// the status endpoint.
type RateLimitStatus struct {
	ratelimit.Status
	Message string `json:"message,omitempty"`
}

// SelectedPage is the persisted destination for notes.
type SelectedPage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NewService builds a Service and subscribes to config updates so an
// external edit of the config file drops the page cache (the credential
// may have changed underneath us).
func NewService(store *config.Store, client *notion.Client, hub *events.Hub) *Service {
	s := &Service{store: store, client: client, hub: hub}
	hub.Subscribe(events.TopicConfigUpdated, func(context.Context, events.Event) {
		client.InvalidateCache()
	})
	return s
}

// TokenSet reports whether a credential is stored, without revealing it.
func (s *Service) TokenSet() bool {
	return s.store.APIToken() != ""
}

// Configured reports whether both a credential and a destination page
// are set, which is what note submission needs.
func (s *Service) Configured() bool {
	id, _ := s.store.SelectedPage()
	return s.TokenSet() && id != ""
}

// SetAPIToken verifies the credential against Notion and persists it on
// success. The page cache is dropped up front so a listing never mixes
// workspaces.
func (s *Service) SetAPIToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.NewValidation("API token cannot be empty")
	}

	s.client.InvalidateCache()

	if err := s.client.VerifyToken(ctx, token); err != nil {
		s.emitStatus(token)
		return err
	}
	if err := s.store.SetAPIToken(token); err != nil {
		return apperrors.NewConfig("Failed to save config: " + err.Error())
	}
	log.Info("api token verified and saved")
	s.emitStatus(token)
	return nil
}

// Pages lists the workspace's pages for the picker.
func (s *Service) Pages(ctx context.Context) ([]notion.Page, error) {
	token := s.store.APIToken()
	if token == "" {
		return nil, apperrors.NewConfig("API token is not set")
	}
	pages, err := s.client.SearchPages(ctx, token)
	s.emitStatus(token)
	return pages, err
}

// PageInfo resolves a page summary by id.
func (s *Service) PageInfo(ctx context.Context, pageID string) (notion.Page, error) {
	token := s.store.APIToken()
	if token == "" {
		return notion.Page{}, apperrors.NewConfig("API token is not set")
	}
	page, err := s.client.PageInfo(ctx, token, pageID)
	s.emitStatus(token)
	return page, err
}

// Selected returns the persisted destination page, ok=false when none
// has been chosen yet.
func (s *Service) Selected() (SelectedPage, bool) {
	id, title := s.store.SelectedPage()
	if id == "" {
		return SelectedPage{}, false
	}
	return SelectedPage{ID: id, Title: title}, true
}

// SetSelected persists the destination page. A missing title is
// resolved through the listing so the settings screen always has one.
func (s *Service) SetSelected(ctx context.Context, pageID, title string) error {
	if strings.TrimSpace(pageID) == "" {
		return apperrors.NewValidation("Page ID cannot be empty")
	}
	if title == "" {
		if token := s.store.APIToken(); token != "" {
			if page, err := s.client.PageInfo(ctx, token, pageID); err == nil {
				title = page.Title
			}
		}
		if title == "" {
			title = "Notion Page"
		}
	}
	if err := s.store.SetSelectedPage(pageID, title); err != nil {
		return apperrors.NewConfig("Failed to save config: " + err.Error())
	}
	log.WithField("page_id", pageID).Info("selected page saved")
	s.hub.Publish(context.Background(), events.TopicPageSelected, SelectedPage{ID: pageID, Title: title})
	return nil
}

// AppendNote appends a note to the selected page.
func (s *Service) AppendNote(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidation("Cannot send an empty note")
	}

	token := s.store.APIToken()
	if token == "" {
		return apperrors.NewConfig("Notion API token not set")
	}
	pageID, _ := s.store.SelectedPage()
	if pageID == "" {
		return apperrors.NewConfig("No Notion page selected")
	}

	err := s.client.AppendNote(ctx, token, pageID, text)
	s.emitStatus(token)
	if err != nil {
		return err
	}
	log.WithField("page_id", pageID).Info("note appended")
	return nil
}

// Status returns the current credential's quota snapshot.
func (s *Service) Status() RateLimitStatus {
	return s.statusFor(s.store.APIToken())
}

func (s *Service) statusFor(token string) RateLimitStatus {
	limits := s.client.Limits()
	st := RateLimitStatus{Status: limits.Status(token)}
	if st.IsLimited {
		st.Message = limits.LimitMessage(token)
	}
	return st
}

// emitStatus pushes the credential's quota snapshot onto the hub after
// an upstream interaction. The payload never contains the credential.
func (s *Service) emitStatus(token string) {
	s.hub.Publish(context.Background(), events.TopicRateLimitChanged, s.statusFor(token))
}
