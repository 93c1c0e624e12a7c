package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePlatformAccess(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected PlatformAccess
	}{
		{name: "all granted", raw: `{"crm":true,"cdi":true,"cefr_speaking":true,"plan":"Enterprise"}`, expected: PlatformAccess{CRM: true, CDI: true, CEFRSpeaking: true}},
		{name: "missing keys are false", raw: `{"crm":true}`, expected: PlatformAccess{CRM: true}},
		{name: "empty document", raw: `{}`, expected: PlatformAccess{}},
		{name: "null document", raw: `null`, expected: PlatformAccess{}},
		{name: "strings are not booleans", raw: `{"crm":"true","cdi":1,"cefr_speaking":null}`, expected: PlatformAccess{}},
		{name: "unknown keys ignored", raw: `{"reports":true,"cdi":true}`, expected: PlatformAccess{CDI: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &doc))
			assert.Equal(t, tt.expected, DerivePlatformAccess(doc))
		})
	}
}

func TestMergePlatformAccess_OnlySuppliedKeysChange(t *testing.T) {
	granted := true
	doc := map[string]any{
		PermissionCRM:          false,
		PermissionCDI:          true,
		PermissionCEFRSpeaking: true,
		PermissionPlan:         "Professional",
		"beta":                 "x",
	}

	merged := MergePlatformAccess(doc, PlatformAccessPatch{CRM: &granted})

	assert.Equal(t, PlatformAccess{CRM: true, CDI: true, CEFRSpeaking: true}, DerivePlatformAccess(merged))
	assert.Equal(t, "Professional", PlanOf(merged))
	assert.Equal(t, "x", merged["beta"])
	// the input document is left untouched
	assert.Equal(t, false, doc[PermissionCRM])
}

func TestMergePlatformAccess_NilDocument(t *testing.T) {
	revoked := false
	merged := MergePlatformAccess(nil, PlatformAccessPatch{CDI: &revoked})

	assert.Equal(t, map[string]any{PermissionCDI: false}, merged)
}

func TestNewPermissionDocument_DefaultsPlan(t *testing.T) {
	doc := NewPermissionDocument(PlatformAccess{CRM: true}, "")

	assert.Equal(t, DefaultPlan, PlanOf(doc))
	assert.True(t, DerivePlatformAccess(doc).CRM)
}

func TestAccount_LockActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Account{}).LockActive(now))
	assert.True(t, (&Account{IsLocked: true}).LockActive(now))
	assert.True(t, (&Account{IsLocked: true, LockedUntil: &future}).LockActive(now))
	assert.False(t, (&Account{IsLocked: true, LockedUntil: &past}).LockActive(now))
}

func TestAccount_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Account{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}).DisplayName())
	assert.Equal(t, "Ada", (&Account{FirstName: "Ada", Username: "ada"}).DisplayName())
	assert.Equal(t, "ada", (&Account{Username: "ada"}).DisplayName())
}
