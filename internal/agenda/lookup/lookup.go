package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agenda/internal/logger"
	"agenda/internal/models"
	"agenda/internal/store"
)

var ErrUnknownColumn = errors.New("unknown lookup column")

type Selector interface {
	Name() string
	Select(ctx context.Context, columns []string, where store.Where) ([]store.Row, error)
}

// Cache stores encoded results between lookups.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Engine struct {
	Events        Selector
	Speakers      Selector
	EventSpeakers Selector
	Logger        *logger.Logger
	Cache         Cache
}

// Result is the presentation-ready outcome of one lookup. An empty Rows with a
// Message is a normal "nothing found" answer, not a failure.
type Result struct {
	Column  string      `json:"column"`
	Value   string      `json:"value"`
	Columns []string    `json:"columns"`
	Widths  []int       `json:"-"`
	Rows    []store.Row `json:"rows"`
	Message string      `json:"message,omitempty"`
}

func (r *Result) Found() bool {
	return len(r.Rows) > 0
}

func NewEngine(rels store.Relations, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		Events:        rels.Events,
		Speakers:      rels.Speakers,
		EventSpeakers: rels.EventSpeakers,
		Logger:        log,
	}
}

// Lookup finds events whose column equals value, each followed by its direct
// sub-sessions. The speaker column matches through the speaker relations.
func (e *Engine) Lookup(ctx context.Context, column, value string) (*Result, error) {
	if column != "speaker" && !models.IsEventColumn(column) {
		return nil, fmt.Errorf("%w %q (expected one of id, %s)", ErrUnknownColumn, column, strings.Join(models.DisplayColumns, ", "))
	}

	key := cacheKey(column, value)
	if cached := e.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	result := &Result{
		Column:  column,
		Value:   value,
		Columns: models.DisplayColumns,
		Widths:  models.DisplayWidths,
	}

	ids, err := e.resolve(ctx, result)
	if err != nil {
		return nil, err
	}
	if result.Message != "" {
		e.Logger.LogLookup(column, value, result.Message)
		return result, nil
	}

	for _, id := range ids {
		rows, err := e.expand(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, rows...)
	}

	for _, row := range result.Rows {
		delete(row, "id")
	}

	if !result.Found() {
		result.Message = fmt.Sprintf("no event with %s of %s found", column, value)
	}
	e.Logger.LogLookup(column, value, fmt.Sprintf("%d ids resolved, %d rows", len(ids), len(result.Rows)))

	e.toCache(ctx, key, result)
	return result, nil
}

// resolve turns the predicate into event ids, in store order.
func (e *Engine) resolve(ctx context.Context, result *Result) ([]interface{}, error) {
	var idRows []store.Row
	var idColumn string

	if result.Column == "speaker" {
		speakers, err := e.Speakers.Select(ctx, []string{"id"}, store.Where{"name": result.Value})
		if err != nil {
			return nil, err
		}
		if len(speakers) == 0 {
			result.Message = fmt.Sprintf("no speaker named %s found", result.Value)
			return nil, nil
		}

		idColumn = "event_id"
		idRows, err = e.EventSpeakers.Select(ctx, []string{idColumn}, store.Where{"speaker_id": speakers[0]["id"]})
		if err != nil {
			return nil, err
		}
	} else {
		var value interface{} = result.Value
		if result.Column == "id" {
			id, err := strconv.ParseInt(strings.TrimSpace(result.Value), 10, 64)
			if err != nil {
				result.Message = fmt.Sprintf("no event with %s of %s found", result.Column, result.Value)
				return nil, nil
			}
			value = id
		}

		var err error
		idColumn = "id"
		idRows, err = e.Events.Select(ctx, []string{idColumn}, store.Where{result.Column: value})
		if err != nil {
			return nil, err
		}
	}

	ids := make([]interface{}, 0, len(idRows))
	for _, row := range idRows {
		ids = append(ids, row[idColumn])
	}
	return ids, nil
}

// expand returns the event followed by its sub-sessions, one level deep.
func (e *Engine) expand(ctx context.Context, id interface{}) ([]store.Row, error) {
	rows, err := e.Events.Select(ctx, nil, store.Where{"id": id})
	if err != nil {
		return nil, err
	}
	children, err := e.Events.Select(ctx, nil, store.Where{"parent_id": id})
	if err != nil {
		return nil, err
	}
	return append(rows, children...), nil
}

func cacheKey(column, value string) string {
	return "lookup:" + column + ":" + value
}

func (e *Engine) fromCache(ctx context.Context, key string) *Result {
	if e.Cache == nil {
		return nil
	}
	data, ok, err := e.Cache.Get(ctx, key)
	if err != nil {
		e.Logger.Warn("CACHE", fmt.Sprintf("Cache read failed for %s: %v", key, err))
		return nil
	}
	if !ok {
		return nil
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		e.Logger.Warn("CACHE", fmt.Sprintf("Discarding undecodable cache entry %s: %v", key, err))
		return nil
	}
	result.Widths = models.DisplayWidths
	e.Logger.Debug("CACHE", fmt.Sprintf("Cache hit for %s", key))
	return &result
}

func (e *Engine) toCache(ctx context.Context, key string, result *Result) {
	if e.Cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		e.Logger.Warn("CACHE", fmt.Sprintf("Failed to encode result for %s: %v", key, err))
		return
	}
	if err := e.Cache.Set(ctx, key, data); err != nil {
		e.Logger.Warn("CACHE", fmt.Sprintf("Cache write failed for %s: %v", key, err))
	}
}
