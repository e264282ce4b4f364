package surface

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"pollnerd/internal/poll"
	"pollnerd/internal/schedule"
)

// Session is one class's live PollEverywhere page inside its own incognito
// context. It is exclusively owned by the engine monitoring that class.
type Session struct {
	page   *rod.Page
	logger *zap.Logger
}

// NewSession opens an incognito context for the class, spoofs its
// geolocation, replays the saved login, and lands on the presenter page.
func (m *Manager) NewSession(ctx context.Context, def *schedule.SessionDefinition, state *State) (*Session, error) {
	browser, err := m.get()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	err = proto.BrowserGrantPermissions{
		Permissions:      []proto.BrowserPermissionType{proto.BrowserPermissionTypeGeolocation},
		BrowserContextID: incognito.BrowserContextID,
	}.Call(incognito)
	if err != nil {
		return nil, fmt.Errorf("grant geolocation: %w", err)
	}

	baseURL := strings.TrimRight(m.cfg.BaseURL, "/")
	page, err := incognito.Page(proto.TargetCreateTarget{URL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	page = page.Context(ctx)

	s := &Session{
		page:   page,
		logger: m.logger.With(zap.String("class", def.Name)),
	}
	closeOnErr := func(err error) (*Session, error) {
		_ = page.Close()
		return nil, err
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		s.logger.Warn("failed to set viewport", zap.Error(err))
	}

	lat, lon := repairCoordinates(def.Latitude, def.Longitude)
	accuracy := 10.0
	if err := (proto.EmulationSetGeolocationOverride{
		Latitude:  &lat,
		Longitude: &lon,
		Accuracy:  &accuracy,
	}).Call(page); err != nil {
		return closeOnErr(fmt.Errorf("spoof geolocation: %w", err))
	}

	if state != nil {
		state.apply(page)
	}

	sectionURL := baseURL + "/" + def.Section
	if err := page.Timeout(m.cfg.NavigationTimeout()).Navigate(sectionURL); err != nil {
		return closeOnErr(fmt.Errorf("navigate to %s: %w", sectionURL, err))
	}

	s.logger.Info("session page ready",
		zap.String("url", sectionURL),
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lon))
	return s, nil
}

// repairCoordinates swaps an obviously inverted pair, a recurring mistake
// in hand-edited class files (latitude positive, longitude negative for
// the US campuses this runs at).
func repairCoordinates(lat, lon float64) (float64, float64) {
	if lon > 0 && lat < 0 {
		return lon, lat
	}
	return lat, lon
}

// Extract reads the currently displayed question. A page without a
// multiple-choice question yields (nil, nil).
func (s *Session) Extract(ctx context.Context) (*poll.Question, error) {
	raw, err := s.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return ParseQuestion(raw), nil
}

// ClickOption clicks the 0-based vote button for the displayed question.
func (s *Session) ClickOption(ctx context.Context, index int) error {
	buttons, err := s.page.Context(ctx).Elements("." + classOptionVote)
	if err != nil {
		return fmt.Errorf("find vote buttons: %w", err)
	}
	if index < 0 || index >= len(buttons) {
		return fmt.Errorf("%w: %d with %d buttons", poll.ErrInvalidIndex, index, len(buttons))
	}
	if err := buttons[index].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click option %d: %w", index, err)
	}
	s.logger.Info("clicked option", zap.Int("index", index))
	return nil
}

// Close tears down the session's page. The incognito context dies with it.
func (s *Session) Close() error {
	return s.page.Close()
}
