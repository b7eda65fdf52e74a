package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{
			name:   "complete create",
			record: Record{Action: KindCreate, Summary: "Gym", StartTime: "2025-01-01T10:00:00Z", EndTime: "2025-01-01T11:00:00Z"},
		},
		{
			name:    "create without times",
			record:  Record{Action: KindCreate, Summary: "Gym"},
			wantErr: true,
		},
		{
			name:    "update without summary",
			record:  Record{Action: KindUpdate, StartTime: "2025-01-01T10:00:00Z", EndTime: "2025-01-01T11:00:00Z"},
			wantErr: true,
		},
		{
			name:    "delete without summary",
			record:  Record{Action: KindDelete},
			wantErr: true,
		},
		{
			name:   "delete",
			record: Record{Action: KindDelete, Summary: "Gym"},
		},
		{
			name:   "list",
			record: Record{Action: KindList},
		},
		{
			name:   "chat",
			record: Chat("hi"),
		},
		{
			name:    "unknown",
			record:  Record{Action: "snooze"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKind_Mutates(t *testing.T) {
	assert.True(t, KindCreate.Mutates())
	assert.True(t, KindUpdate.Mutates())
	assert.True(t, KindDelete.Mutates())
	assert.False(t, KindList.Mutates())
	assert.False(t, KindChat.Mutates())
}
