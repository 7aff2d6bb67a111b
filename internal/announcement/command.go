package announcement

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandPlayer plays the chime with a host command such as
// "aplay" or "paplay", passing the sound file as the last argument.
type CommandPlayer struct {
	Command string
	File    string
}

func (p *CommandPlayer) Play(ctx context.Context) error {
	args := strings.Fields(p.Command)
	if len(args) == 0 {
		return fmt.Errorf("announcement: no chime command configured")
	}
	args = append(args, p.File)
	if out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("announcement: chime %q: %w: %s", p.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// baseWordsPerMinute is espeak-ng's default speed; rate scales it.
const baseWordsPerMinute = 175

// CommandSpeaker speaks through a host TTS command. Template fields are
// {lang}, {voice}, {wpm} and {text}; {text} is passed as one argument.
// Example: "espeak-ng -v {voice} -s {wpm} {text}".
type CommandSpeaker struct {
	Template string
}

func (s *CommandSpeaker) Speak(ctx context.Context, u Utterance) error {
	args, err := s.args(u)
	if err != nil {
		return err
	}
	if out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("announcement: speak %s: %w: %s", u.Lang, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (s *CommandSpeaker) args(u Utterance) ([]string, error) {
	fields := strings.Fields(s.Template)
	if len(fields) == 0 {
		return nil, fmt.Errorf("announcement: no speech command configured")
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	r := strings.NewReplacer(
		"{lang}", u.Lang,
		"{voice}", voiceFor(u.Lang),
		"{wpm}", strconv.Itoa(int(baseWordsPerMinute*rate)),
	)
	args := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "{text}" {
			args = append(args, u.Text)
			continue
		}
		args = append(args, r.Replace(f))
	}
	return args, nil
}

// voiceFor maps a BCP 47 tag to an espeak-ng voice name.
func voiceFor(lang string) string {
	switch strings.ToLower(lang) {
	case "en-us":
		return "en-us"
	case "ms-my":
		return "ms"
	}
	return strings.ToLower(strings.SplitN(lang, "-", 2)[0])
}
