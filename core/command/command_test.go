package command

import "testing"

func TestCommand_Names(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected string
	}{
		{NewStartBot("a.json"), "StartBot"},
		{&StopBot{}, "StopBot"},
		{&SelectScripts{Scripts: []string{"a"}}, "SelectScripts"},
		{&SaveButton{Key: "attack", RawX: 1, RawY: 2}, "SaveButton"},
		{&ClearButton{Key: "attack"}, "ClearButton"},
		{&ResetResolution{}, "ResetResolution"},
		{&UpdateSetting{Key: "gold_threshold", Value: "200k"}, "UpdateSetting"},
		{&StartRecording{}, "StartRecording"},
		{&RecordTouch{Type: "down"}, "RecordTouch"},
		{&StopRecording{Name: "x"}, "StopRecording"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.cmd.CommandName(); got != tt.expected {
				t.Errorf("CommandName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBotCommand_Interface(t *testing.T) {
	botCommands := []Command{NewStartBot(), &StopBot{}, &SelectScripts{}}
	for _, cmd := range botCommands {
		if _, ok := cmd.(BotCommand); !ok {
			t.Errorf("%s should implement BotCommand", cmd.CommandName())
		}
	}

	others := []Command{&SaveButton{}, &ClearButton{}, &ResetResolution{}, &UpdateSetting{},
		&StartRecording{}, &RecordTouch{}, &StopRecording{}}
	for _, cmd := range others {
		if _, ok := cmd.(BotCommand); ok {
			t.Errorf("%s should not implement BotCommand", cmd.CommandName())
		}
	}
}

func TestNewStartBot(t *testing.T) {
	cmd := NewStartBot("a.json", "preset:b.json")
	if len(cmd.Scripts) != 2 || cmd.Scripts[1] != "preset:b.json" {
		t.Errorf("Scripts = %v", cmd.Scripts)
	}
	if len(NewStartBot().Scripts) != 0 {
		t.Error("NewStartBot() should have no scripts")
	}
}
