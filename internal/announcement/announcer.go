// Package announcement calls queue numbers aloud: a chime, then the number
// spoken in English and Malay.
package announcement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultSpeechRate = 0.8
	DefaultPadWidth   = 3
)

// Utterance is one spoken sentence.
type Utterance struct {
	Text string  `json:"text"`
	Lang string  `json:"lang"`
	Rate float64 `json:"rate"`
}

// Player plays the notification sound and returns once it has finished.
type Player interface {
	Play(ctx context.Context) error
}

// Speaker speaks one utterance and returns once it has been spoken.
type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
}

// Announcement describes one call, as published to observers.
type Announcement struct {
	ID          string      `json:"id"`
	QueueNumber string      `json:"queue_number"`
	Spoken      string      `json:"spoken"`
	Utterances  []Utterance `json:"utterances"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Observer is told about every announcement before the chime plays.
type Observer interface {
	Announced(a Announcement)
}

// FormatQueueNumber left-pads number with zeros to width and spells it
// digit by digit, with 0 spoken as "zero": "7" -> "zero zero 7".
func FormatQueueNumber(number string, width int) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	if n := len(number); n < width && isDigits(number) {
		number = strings.Repeat("0", width-n) + number
	}
	parts := make([]string, 0, len(number))
	for _, r := range number {
		if r == '0' {
			parts = append(parts, "zero")
			continue
		}
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Utterances returns the English then Malay sentences for a spelled number.
func Utterances(spoken string, rate float64) []Utterance {
	return []Utterance{
		{Text: "Now serving " + spoken, Lang: "en-US", Rate: rate},
		{Text: "Sekarang nombor " + spoken, Lang: "ms-MY", Rate: rate},
	}
}

type Options struct {
	PadWidth int
	Rate     float64
	Observer Observer
}

// Announcer sequences announcements. Requests are handled one at a time in
// arrival order: the chime must finish before any speech starts, and a new
// announcement waits behind utterances still being spoken. Nothing in flight
// can be cancelled.
type Announcer struct {
	player  Player
	speaker Speaker
	opts    Options
	logger  zerolog.Logger

	queue chan Announcement
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewAnnouncer starts the announcement worker. speaker may be nil when the
// host has no speech capability; only the chime is played then.
func NewAnnouncer(player Player, speaker Speaker, opts Options, logger zerolog.Logger) *Announcer {
	if opts.Rate == 0 {
		opts.Rate = DefaultSpeechRate
	}
	a := &Announcer{
		player:  player,
		speaker: speaker,
		opts:    opts,
		logger:  logger.With().Str("component", "announcer").Logger(),
		queue:   make(chan Announcement, 64),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Announce queues an announcement for queueNumber and returns immediately.
func (a *Announcer) Announce(ctx context.Context, queueNumber string) (Announcement, error) {
	spoken := FormatQueueNumber(queueNumber, a.opts.PadWidth)
	if spoken == "" {
		return Announcement{}, fmt.Errorf("announcement: empty queue number")
	}
	ann := Announcement{
		ID:          uuid.NewString(),
		QueueNumber: queueNumber,
		Spoken:      spoken,
		CreatedAt:   time.Now(),
	}
	if a.speaker != nil {
		ann.Utterances = Utterances(spoken, a.opts.Rate)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return Announcement{}, fmt.Errorf("announcement: announcer closed")
	}
	select {
	case a.queue <- ann:
		return ann, nil
	case <-ctx.Done():
		return Announcement{}, ctx.Err()
	}
}

// Close stops accepting announcements and waits for queued ones to finish.
func (a *Announcer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Announcer) run() {
	defer a.wg.Done()
	for ann := range a.queue {
		a.play(ann)
	}
}

func (a *Announcer) play(ann Announcement) {
	ctx := context.Background()
	if a.opts.Observer != nil {
		a.opts.Observer.Announced(ann)
	}
	if a.player != nil {
		if err := a.player.Play(ctx); err != nil {
			a.logger.Error().Err(err).Str("queue_number", ann.QueueNumber).Msg("chime failed")
		}
	}
	for _, u := range ann.Utterances {
		if err := a.speaker.Speak(ctx, u); err != nil {
			a.logger.Error().Err(err).Str("queue_number", ann.QueueNumber).Str("lang", u.Lang).Msg("speech failed")
		}
	}
	a.logger.Info().Str("queue_number", ann.QueueNumber).Str("spoken", ann.Spoken).Msg("announced")
}
