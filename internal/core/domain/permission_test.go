package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/accessly/workspace_access_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermissionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid cost centers view", input: "costCenters.view"},
		{name: "valid invoices delete", input: "invoices.delete"},
		{name: "valid members edit", input: "members.edit"},
		{name: "unknown category", input: "ledgers.view", wantErr: true},
		{name: "unknown action", input: "invoices.approve", wantErr: true},
		{name: "missing action", input: "invoices", wantErr: true},
		{name: "empty action", input: "invoices.", wantErr: true},
		{name: "empty category", input: ".view", wantErr: true},
		{name: "too many segments", input: "invoices.view.all", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "substring is not a category", input: "costCenter.view", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := domain.ParsePermissionID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestPermissionID_TextMarshalling(t *testing.T) {
	id := domain.NewPermissionID(domain.CategoryReports, domain.ActionEdit)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"reports.edit"`, string(data))

	var decoded domain.PermissionID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	var invalid domain.PermissionID
	assert.Error(t, json.Unmarshal([]byte(`"reports.destroy"`), &invalid))
}

func TestAllPermissionIDs(t *testing.T) {
	ids := domain.AllPermissionIDs()
	assert.Len(t, ids, len(domain.PermissionCategories)*len(domain.PermissionActions))

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id.String()], "duplicate id %s", id.String())
		seen[id.String()] = true
	}
}

func TestPermissionGrant_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name          string
		grant         domain.PermissionGrant
		wantExpired   bool
		wantGrantedAt bool
	}{
		{
			name:          "granted without expiry",
			grant:         domain.PermissionGrant{Granted: true},
			wantExpired:   false,
			wantGrantedAt: true,
		},
		{
			name:          "granted with future expiry",
			grant:         domain.PermissionGrant{Granted: true, ExpiresAt: &future},
			wantExpired:   false,
			wantGrantedAt: true,
		},
		{
			name:          "granted but expired",
			grant:         domain.PermissionGrant{Granted: true, ExpiresAt: &past},
			wantExpired:   true,
			wantGrantedAt: false,
		},
		{
			name:          "denied and not expired",
			grant:         domain.PermissionGrant{Granted: false, ExpiresAt: &future},
			wantExpired:   false,
			wantGrantedAt: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExpired, tt.grant.Expired(now))
			assert.Equal(t, tt.wantGrantedAt, tt.grant.GrantedAt(now))
		})
	}
}
