package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"github.com/groupo-app/backend/internal/metrics"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/repositories"
)

// Timeout bounds every push gateway call.
const Timeout = 5 * time.Second

const maxBodyLen = 80

// Message is the payload accepted by the Expo push gateway.
type Message struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Dispatcher delivers fire-and-forget push notifications for new posts and
// comments. Delivery is best-effort: per-token failures are logged and never
// surfaced to the request that triggered them, and there is no retry or
// queueing. It is invoked after the data mutation has committed.
type Dispatcher struct {
	endpoint string
	client   *http.Client
	tokens   repositories.DeviceTokenRepository
	fcm      *messaging.Client // nil unless Firebase credentials are configured
	log      *zap.Logger
}

// NewDispatcher creates a Dispatcher. fcm may be nil; devices registered
// with the "fcm" platform tag are then skipped with a logged failure.
func NewDispatcher(endpoint string, tokens repositories.DeviceTokenRepository, fcm *messaging.Client, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: Timeout},
		tokens:   tokens,
		fcm:      fcm,
		log:      log,
	}
}

// PostCreated notifies group members about a new post, excluding the actor.
func (d *Dispatcher) PostCreated(ctx context.Context, group *models.Group, post *models.Post, actor *models.User) {
	recipients := recipientIDs(group.Members, actor.ID)
	title := fmt.Sprintf("New post in %s", group.Name)
	data := map[string]any{
		"group_id": group.ID,
		"post_id":  post.ID,
	}
	d.send(ctx, recipients, title, post.Content, data)
}

// CommentAdded notifies group members about a new comment, excluding the
// actor and the post's author.
func (d *Dispatcher) CommentAdded(ctx context.Context, group *models.Group, post *models.Post, comment *models.Comment, actor *models.User) {
	recipients := recipientIDs(group.Members, actor.ID, post.UserID)
	title := fmt.Sprintf("New comment in %s", group.Name)
	data := map[string]any{
		"group_id":   group.ID,
		"post_id":    post.ID,
		"comment_id": comment.ID,
		"type":       "comment",
	}
	d.send(ctx, recipients, title, comment.Content, data)
}

// recipientIDs returns member IDs minus the excluded ones.
func recipientIDs(members []models.User, exclude ...uint) []uint {
	excluded := make(map[uint]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if !excluded[m.ID] {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func (d *Dispatcher) send(ctx context.Context, userIDs []uint, title, body string, data map[string]any) {
	if len(userIDs) == 0 {
		return
	}
	tokens, err := d.tokens.ListForUsers(userIDs)
	if err != nil {
		d.log.Error("failed to load device tokens", zap.Error(err))
		return
	}

	body = truncate(body, maxBodyLen)
	for _, t := range tokens {
		if err := d.push(ctx, t, title, body, data); err != nil {
			metrics.PushFailed.Inc()
			d.log.Warn("push delivery failed",
				zap.String("platform", t.Platform),
				zap.Uint("user_id", t.UserID),
				zap.Error(err))
			continue
		}
		metrics.PushSent.Inc()
	}
}

func (d *Dispatcher) push(ctx context.Context, token models.DeviceToken, title, body string, data map[string]any) error {
	if token.Platform == "fcm" {
		return d.pushFCM(ctx, token, title, body, data)
	}
	return d.pushExpo(ctx, token, title, body, data)
}

func (d *Dispatcher) pushExpo(ctx context.Context, token models.DeviceToken, title, body string, data map[string]any) error {
	payload, err := json.Marshal(Message{To: token.Token, Title: title, Body: body, Data: data})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}

func (d *Dispatcher) pushFCM(ctx context.Context, token models.DeviceToken, title, body string, data map[string]any) error {
	if d.fcm == nil {
		return errors.New("fcm messaging client not configured")
	}
	strData := make(map[string]string, len(data))
	for k, v := range data {
		strData[k] = fmt.Sprint(v)
	}
	_, err := d.fcm.Send(ctx, &messaging.Message{
		Token:        token.Token,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         strData,
	})
	return err
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
