package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hallgrim/dayplan/internal/api"
	"github.com/hallgrim/dayplan/internal/domain"
	"github.com/hallgrim/dayplan/internal/engine"
)

// session binds one command invocation to a list: config, HTTP client, and
// an engine loaded with the fetched list.
type session struct {
	app    *App
	cfg    *FileConfig
	client *api.Client
	rec    *engine.Reconciler
	listID string
}

func (a *App) configPath() (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	return DefaultConfigPath()
}

func (a *App) loadConfig() (*FileConfig, string, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadFileConfig(path)
	if err != nil {
		return nil, "", err
	}
	if a.Server != "" {
		cfg.Server = a.Server
	}
	if a.List != "" {
		cfg.List = a.List
	}
	return cfg, path, nil
}

func newSession(ctx context.Context, app *App) (*session, error) {
	cfg, _, err := app.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.List == "" {
		return nil, fmt.Errorf("no list configured: run 'dayplan init' or pass --list")
	}

	client := api.NewClient(api.ClientConfig{BaseURL: cfg.Server})

	ct, err := client.FetchList(ctx, cfg.List)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", cfg.List, err)
	}

	rec := engine.New(client, engine.Config{
		OnError: func(me engine.MutationError) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", me)
		},
	})
	rec.Load(ct)

	return &session{app: app, cfg: cfg, client: client, rec: rec, listID: ct.ID}, nil
}

// finish flushes in-flight persistence and stops the engine. Commands call
// it before printing final state.
func (s *session) finish() {
	s.rec.Wait()
	s.rec.Close()
}

// resolveItem maps a command line reference to an item. A small integer is
// a 1-based position; anything else matches an item ID prefix.
func (s *session) resolveItem(ref string) (domain.Item, error) {
	ct, ok := s.rec.Snapshot(s.listID)
	if !ok {
		return domain.Item{}, fmt.Errorf("list %s not loaded", s.listID)
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ct.Items) {
			return domain.Item{}, fmt.Errorf("position %d out of range 1..%d", n, len(ct.Items))
		}
		return ct.Items[n-1], nil
	}

	var matches []domain.Item
	for _, it := range ct.Items {
		if strings.HasPrefix(it.ID.Value(), ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Item{}, fmt.Errorf("no item matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Item{}, fmt.Errorf("%q is ambiguous (%d matches)", ref, len(matches))
	}
}

// printList renders the current snapshot to stdout.
func (s *session) printList() error {
	ct, ok := s.rec.Snapshot(s.listID)
	if !ok {
		return fmt.Errorf("list %s not loaded", s.listID)
	}

	if s.app.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(containerToListDTO(ct))
	}

	if ct.Title != "" {
		fmt.Printf("%s\n", ct.Title)
	}
	for i, it := range ct.Items {
		fmt.Println(formatItem(i+1, it))
	}
	return nil
}

func formatItem(pos int, it domain.Item) string {
	mark := " "
	switch it.State {
	case domain.StateCompletedPending:
		mark = "x"
	case domain.StateSoftDeleted, domain.StatePurged:
		mark = "-"
	default:
		if it.Completed {
			mark = "x"
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%3d [%s] %s", pos, mark, it.Text)
	if it.Priority > domain.PriorityNone {
		fmt.Fprintf(&sb, " (%s)", priorityLabel(it.Priority))
	}
	if it.DueAt != nil {
		fmt.Fprintf(&sb, " @%s", it.DueAt.Format("2006-01-02 15:04"))
	}
	if it.Recurring {
		sb.WriteString(" ↻")
	}
	if it.ID.IsTemporary() {
		sb.WriteString(" …")
	}
	return sb.String()
}

func priorityLabel(p domain.Priority) string {
	switch p {
	case domain.PriorityLow:
		return "low"
	case domain.PriorityMedium:
		return "medium"
	case domain.PriorityHigh:
		return "high"
	default:
		return "none"
	}
}

func containerToListDTO(ct *domain.Container) api.ListDTO {
	dto := api.ListDTO{ID: ct.ID, Title: ct.Title, Items: make([]api.ItemDTO, 0, len(ct.Items))}
	for _, it := range ct.Items {
		rec, _ := recordFor(it)
		dto.Items = append(dto.Items, api.RecordToDTO(rec))
	}
	return dto
}

func recordFor(it domain.Item) (engine.ItemRecord, bool) {
	return engine.ItemRecord{
		ID:         it.ID.Value(),
		Text:       it.Text,
		Completed:  it.Completed,
		Priority:   it.Priority,
		DueAt:      it.DueAt,
		Position:   it.Position,
		Recurring:  it.Recurring,
		Recurrence: it.Recurrence,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
		Version:    it.Version,
	}, it.ID.IsPersisted()
}
