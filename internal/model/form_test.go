package model

import "testing"

func TestFormPayloadClone(t *testing.T) {
	t.Run("Nil clones to nil", func(t *testing.T) {
		var p FormPayload
		if p.Clone() != nil {
			t.Error("Expected nil payload to clone to nil")
		}
	})

	t.Run("Sequences are deep-copied", func(t *testing.T) {
		p := FormPayload{"title": "Rome", "travelers": []any{"Ana"}}
		c := p.Clone()

		c["title"] = "Paris"
		c["travelers"].([]any)[0] = "Bruno"

		if p["title"] != "Rome" {
			t.Error("Expected scalar fields to be independent after clone")
		}
		if p["travelers"].([]any)[0] != "Ana" {
			t.Error("Expected sequence contents to be independent after clone")
		}
	})
}
