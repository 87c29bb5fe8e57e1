package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Garsondee/Fortress-Command/internal/game"
)

// Command names accepted from the decider.
const (
	CmdDeploy   = "DEPLOY"
	CmdOrder    = "ORDER"
	CmdAutoScan = "AUTOSCAN"
)

const (
	defaultThoughts = "no tactical description"
	resultPending   = "pending"
)

// ErrInvalidResponse wraps every batch-level parse failure.
var ErrInvalidResponse = errors.New("invalid decider response")

// Action is one decoded command. Params keeps the raw object so the history
// can echo back exactly what the decider sent.
type Action struct {
	Cmd    string
	Type   string
	ID     *int
	On     *bool
	Target json.RawMessage
	Params json.RawMessage
}

// Response is a parsed decider reply.
type Response struct {
	Thoughts string
	Actions  []Action
}

type wireResponse struct {
	Thoughts *string          `json:"thoughts"`
	Actions  *json.RawMessage `json:"actions"`
}

type wireAction struct {
	Cmd    *string         `json:"cmd"`
	Type   string          `json:"type"`
	ID     *float64        `json:"id"`
	On     *bool           `json:"on"`
	Target json.RawMessage `json:"target"`
}

// ParseResponse decodes a reply of the form {thoughts, actions[]}. A body
// that is not a JSON object fails the whole batch. A non-array actions field
// yields no actions. Individual malformed actions are kept so they can fail
// with a reason at execution time.
func ParseResponse(content string) (*Response, error) {
	body := bytes.TrimSpace([]byte(content))
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidResponse)
	}
	var wr wireResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&wr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidResponse)
	}

	r := &Response{Thoughts: defaultThoughts}
	if wr.Thoughts != nil && *wr.Thoughts != "" {
		r.Thoughts = *wr.Thoughts
	}
	if wr.Actions == nil {
		return r, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(*wr.Actions, &raws); err != nil {
		return r, nil
	}
	for _, raw := range raws {
		r.Actions = append(r.Actions, decodeAction(raw))
	}
	return r, nil
}

func decodeAction(raw json.RawMessage) Action {
	a := Action{Params: raw}
	var wa wireAction
	if err := json.Unmarshal(raw, &wa); err != nil {
		return a
	}
	if wa.Cmd != nil {
		a.Cmd = *wa.Cmd
	}
	a.Type = wa.Type
	if wa.ID != nil && *wa.ID == math.Trunc(*wa.ID) {
		id := int(*wa.ID)
		a.ID = &id
	}
	a.On = wa.On
	a.Target = wa.Target
	return a
}

// DecodeTarget turns a wire target into a funnel reference: an object with
// numeric x and y is a point, a bare integer is an actor id, and an absent
// or null target is the empty reference.
func DecodeTarget(raw json.RawMessage) (game.TargetRef, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return game.TargetRef{}, nil
	}
	switch trimmed[0] {
	case '{':
		var p struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		}
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return game.TargetRef{}, fmt.Errorf("bad target %s: %w", trimmed, err)
		}
		if p.X == nil || p.Y == nil {
			return game.TargetRef{}, fmt.Errorf("bad target %s: need x and y", trimmed)
		}
		return game.PointRef(*p.X, *p.Y), nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil || n != math.Trunc(n) {
			return game.TargetRef{}, fmt.Errorf("bad target %s: want {x,y} or an integer id", trimmed)
		}
		return game.ActorRef(game.ActorID(n)), nil
	}
}
