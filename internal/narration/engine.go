package narration

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

type EngineType string

const (
	EngineTypeNone   EngineType = "none"
	EngineTypeMock   EngineType = "mock"
	EngineTypeESpeak EngineType = "espeak"
	EngineTypeGoogle EngineType = "google"
	EngineTypeAuto   EngineType = "auto" // best available on this machine
)

func (e EngineType) String() string {
	return string(e)
}

// NewEngine builds the engine named by config.Type. It returns a nil Engine
// and no error when narration is switched off.
func NewEngine(config Config) (Engine, error) {
	if config.Type == "" || config.Type == EngineTypeNone.String() {
		return nil, nil
	}

	if config.Type == EngineTypeAuto.String() {
		best, ok := bestAvailableEngine()
		if !ok {
			logrus.Warn("no narration engine available, narration disabled")
			return nil, nil
		}
		config.Type = best.String()
	}

	switch config.Type {
	case EngineTypeMock.String():
		return NewMockEngine(config), nil

	case EngineTypeESpeak.String():
		engine, err := newESpeakEngine(config)
		if err != nil {
			return nil, err
		}
		return engine, nil

	case EngineTypeGoogle.String():
		engine, err := newGoogleEngine(config)
		if err != nil {
			return nil, err
		}
		return engine, nil

	default:
		return nil, fmt.Errorf("unsupported narration engine type: %s", config.Type)
	}
}

func bestAvailableEngine() (EngineType, bool) {
	if hasGoogleCredentials() {
		return EngineTypeGoogle, true
	}
	if _, err := findESpeakExecutable(); err == nil && runtime.GOOS != "windows" {
		return EngineTypeESpeak, true
	}
	return EngineTypeNone, false
}

// GetAvailableEngines lists the engines usable on this machine.
func GetAvailableEngines() []EngineType {
	engines := []EngineType{EngineTypeNone, EngineTypeMock}

	if _, err := findESpeakExecutable(); err == nil {
		engines = append(engines, EngineTypeESpeak)
	}
	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogle)
	}
	return engines
}

func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}
