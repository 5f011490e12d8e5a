package narration

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ESpeakEngine speaks through an espeak-ng or espeak process.
type ESpeakEngine struct {
	config Config
	path   string
	cmd    *exec.Cmd
	mutex  sync.RWMutex
}

func newESpeakEngine(config Config) (*ESpeakEngine, error) {
	path, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}

	if err := exec.Command(path, "--version").Run(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}

	return &ESpeakEngine{config: config, path: path}, nil
}

func findESpeakExecutable() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

// espeakArgs maps the config onto command line switches: words per minute
// around the default 175 and amplitude around the default 100.
func espeakArgs(config Config, text string) []string {
	var args []string
	if config.Voice != "" && config.Voice != "default" {
		args = append(args, "-v", config.Voice)
	}
	if config.Speed > 0 {
		args = append(args, "-s", strconv.Itoa(int(175*config.Speed)))
	}
	if config.Volume > 0 {
		args = append(args, "-a", strconv.Itoa(int(100*config.Volume)))
	}
	return append(args, text)
}

// Speak starts a new espeak process, cutting off whatever was still being
// read.
func (e *ESpeakEngine) Speak(text string) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.stopLocked()

	cmd := exec.Command(e.path, espeakArgs(e.config, text)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start eSpeak: %w", err)
	}
	e.cmd = cmd

	go func() {
		err := cmd.Wait()

		e.mutex.Lock()
		if e.cmd == cmd {
			e.cmd = nil
		}
		e.mutex.Unlock()

		// killed by Stop or a newer Speak
		if err != nil && cmd.ProcessState != nil && !cmd.ProcessState.Exited() {
			return
		}
		if err != nil {
			logrus.WithError(err).Warn("eSpeak failed")
		}
	}()

	return nil
}

func (e *ESpeakEngine) Stop() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.stopLocked()
}

func (e *ESpeakEngine) stopLocked() error {
	if e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	err := e.cmd.Process.Kill()
	e.cmd = nil
	return err
}

func (e *ESpeakEngine) IsPlaying() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.cmd != nil
}

func (e *ESpeakEngine) GetAvailableVoices() ([]string, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}
	return parseESpeakVoices(string(output)), nil
}

// parseESpeakVoices reads the VoiceName column of `espeak --voices`:
// Pty Language Age/Gender VoiceName File Other Languages
func parseESpeakVoices(output string) []string {
	voices := make([]string, 0)
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		if fields := strings.Fields(line); len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}
	return voices
}
