package prompts

import (
	"strings"
	"testing"
)

func TestScriptTemplate_SupportedLanguages(t *testing.T) {
	for _, lang := range []string{"en", "es", "fr"} {
		if _, ok := ScriptTemplate(lang); !ok {
			t.Errorf("Expected a template for %q", lang)
		}
	}
	if _, ok := ScriptTemplate("de"); ok {
		t.Error("Expected no template for an unsupported language")
	}
}

func TestStyle_FallsBackToStandard(t *testing.T) {
	unknown := Style("does_not_exist")
	standard := Style(StandardStyle)
	if unknown.ScriptInstruction != standard.ScriptInstruction {
		t.Error("Unknown style should fall back to the standard style")
	}
}

func TestAudioStyles_AllDemandVerbatimOutput(t *testing.T) {
	for key, cfg := range AudioStyles {
		if !strings.Contains(cfg.ScriptInstruction, "verbatim text to be spoken") {
			t.Errorf("Style %q instruction should demand verbatim-only output", key)
		}
		if cfg.TTSSuffix == "" {
			t.Errorf("Style %q is missing a TTS delivery suffix", key)
		}
	}
}

func TestRenderScriptPrompt_SubstitutesInOrder(t *testing.T) {
	template, _ := ScriptTemplate("en")
	prompt := RenderScriptPrompt(template, "STYLE-INSTRUCTION", "NEWS-CONTEXT")
	styleIdx := strings.Index(prompt, "STYLE-INSTRUCTION")
	newsIdx := strings.Index(prompt, "NEWS-CONTEXT")
	if styleIdx == -1 || newsIdx == -1 {
		t.Fatal("Prompt should contain both substitutions")
	}
	if styleIdx > newsIdx {
		t.Error("Style instruction should precede the news context")
	}
	if strings.Contains(prompt, "%s") {
		t.Error("Prompt should have no unfilled placeholders")
	}
}

func TestBuildTTSInstruction(t *testing.T) {
	got := BuildTTSInstruction("es", "quick_brief")
	if !strings.Contains(got, "Castilian Spanish") {
		t.Error("Spanish instruction should carry the Peninsular accent guidance")
	}
	if !strings.Contains(got, AudioStyles["quick_brief"].TTSSuffix) {
		t.Error("Instruction should end with the style's delivery suffix")
	}
	if !strings.Contains(got, "Base Persona:") {
		t.Error("Instruction should carry the shared persona baseline")
	}
}

func TestBuildTTSInstruction_UnknownLanguageUsesEnglishAccent(t *testing.T) {
	got := BuildTTSInstruction("xx", StandardStyle)
	if !strings.Contains(got, "North American English") {
		t.Error("Unknown language should fall back to the English accent guidance")
	}
}
