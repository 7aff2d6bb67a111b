package announcement

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// recorder captures the order of chime and speech events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakePlayer struct{ rec *recorder }

func (p *fakePlayer) Play(ctx context.Context) error {
	p.rec.add("chime")
	return nil
}

type fakeSpeaker struct{ rec *recorder }

func (s *fakeSpeaker) Speak(ctx context.Context, u Utterance) error {
	s.rec.add(u.Lang + ":" + u.Text)
	return nil
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []Announcement
}

func (o *fakeObserver) Announced(a Announcement) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, a)
}

func TestFormatQueueNumber(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"7", 3, "zero zero 7"},
		{"007", 3, "zero zero 7"},
		{"105", 3, "1 zero 5"},
		{"1234", 3, "1 2 3 4"},
		{"7", 0, "7"},
		{"A12", 3, "A 1 2"},
		{"", 3, ""},
	}
	for _, tc := range cases {
		if got := FormatQueueNumber(tc.in, tc.width); got != tc.want {
			t.Errorf("FormatQueueNumber(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestAnnouncer_ChimeThenBothLanguages(t *testing.T) {
	rec := &recorder{}
	obs := &fakeObserver{}
	a := NewAnnouncer(&fakePlayer{rec}, &fakeSpeaker{rec}, Options{PadWidth: 3, Observer: obs}, zerolog.Nop())

	ann, err := a.Announce(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Announce(context.Background(), "8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Close()

	if ann.Spoken != "zero zero 7" {
		t.Errorf("expected spoken 'zero zero 7', got %q", ann.Spoken)
	}
	want := []string{
		"chime",
		"en-US:Now serving zero zero 7",
		"ms-MY:Sekarang nombor zero zero 7",
		"chime",
		"en-US:Now serving zero zero 8",
		"ms-MY:Sekarang nombor zero zero 8",
	}
	if got := rec.list(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected sequence:\n got %v\nwant %v", got, want)
	}
	if len(obs.seen) != 2 || obs.seen[0].QueueNumber != "7" {
		t.Errorf("expected observer to see both announcements, got %+v", obs.seen)
	}
	if ann.Utterances[0].Rate != DefaultSpeechRate {
		t.Errorf("expected rate %v, got %v", DefaultSpeechRate, ann.Utterances[0].Rate)
	}
}

func TestAnnouncer_NoSpeakerPlaysChimeOnly(t *testing.T) {
	rec := &recorder{}
	a := NewAnnouncer(&fakePlayer{rec}, nil, Options{PadWidth: 3}, zerolog.Nop())

	ann, err := a.Announce(context.Background(), "12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.Close()

	if len(ann.Utterances) != 0 {
		t.Errorf("expected no utterances, got %v", ann.Utterances)
	}
	if got := rec.list(); !reflect.DeepEqual(got, []string{"chime"}) {
		t.Errorf("expected chime only, got %v", got)
	}
}

func TestAnnouncer_RejectsAfterClose(t *testing.T) {
	a := NewAnnouncer(nil, nil, Options{}, zerolog.Nop())
	a.Close()
	if _, err := a.Announce(context.Background(), "1"); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestCommandSpeaker_Args(t *testing.T) {
	s := &CommandSpeaker{Template: "espeak-ng -v {voice} -s {wpm} {text}"}
	args, err := s.args(Utterance{Text: "Sekarang nombor zero zero 7", Lang: "ms-MY", Rate: 0.8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"espeak-ng", "-v", "ms", "-s", "140", "Sekarang nombor zero zero 7"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("got %v, want %v", args, want)
	}

	if _, err := (&CommandSpeaker{}).args(Utterance{}); err == nil {
		t.Error("expected error for empty template")
	}
}
