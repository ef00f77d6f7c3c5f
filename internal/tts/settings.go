package tts

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mednis/medsbot/internal/storage"
)

var ErrInvalidSettings = errors.New("invalid TTS settings")

// SettingsError explains why an uploaded global settings file was rejected.
type SettingsError struct {
	Msg string
}

func (e *SettingsError) Error() string { return e.Msg }

func (e *SettingsError) Is(target error) bool { return target == ErrInvalidSettings }

var requiredGlobalKeys = []struct {
	key  string
	kind string
}{
	{"regular_voices", "list"},
	{"extra_voices", "list"},
	{"statistics", "bool"},
	{"local_api", "bool"},
	{"local_voices", "dict"},
	{"local_api_url", "str"},
	{"public_api_url", "str"},
}

// ParseGlobalSettings validates an uploaded settings document. Every key is
// required and voice lists must hold objects.
func ParseGlobalSettings(data []byte) (storage.TTSGlobalSettings, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return storage.TTSGlobalSettings{}, &SettingsError{Msg: "Invalid JSON file."}
	}

	for _, req := range requiredGlobalKeys {
		v, ok := raw[req.key]
		if !ok {
			return storage.TTSGlobalSettings{}, &SettingsError{Msg: "Missing required key: " + req.key}
		}
		if !hasKind(v, req.kind) {
			return storage.TTSGlobalSettings{}, &SettingsError{
				Msg: fmt.Sprintf("Invalid type for key '%s'. Expected %s.", req.key, req.kind),
			}
		}
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if _, ok := item.(map[string]any); !ok {
					return storage.TTSGlobalSettings{}, &SettingsError{
						Msg: fmt.Sprintf("Invalid type for key '%s'. Expected list of dictionaries.", req.key),
					}
				}
			}
		}
	}

	var s storage.TTSGlobalSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return storage.TTSGlobalSettings{}, &SettingsError{Msg: err.Error()}
	}
	if s.LocalVoices == nil {
		s.LocalVoices = map[string]string{}
	}
	return s, nil
}

func hasKind(v any, kind string) bool {
	switch kind {
	case "list":
		_, ok := v.([]any)
		return ok
	case "bool":
		_, ok := v.(bool)
		return ok
	case "dict":
		_, ok := v.(map[string]any)
		return ok
	case "str":
		_, ok := v.(string)
		return ok
	}
	return false
}

// GlobalSettingsJSON renders settings for download.
func GlobalSettingsJSON(s storage.TTSGlobalSettings) []byte {
	b, _ := json.MarshalIndent(s, "", "    ")
	return b
}
