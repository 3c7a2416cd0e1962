package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swirlhq/aio-assistant/internal/domain"
)

func TestReverseTurns(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	turn := func(content string, offset int) domain.ConversationTurn {
		return domain.ConversationTurn{
			SessionID: "sess-1",
			Role:      domain.RoleUser,
			Content:   content,
			Timestamp: base.Add(time.Duration(offset) * time.Minute),
		}
	}

	tests := []struct {
		name  string
		turns []domain.ConversationTurn
	}{
		{"empty", nil},
		{"single", []domain.ConversationTurn{turn("only", 0)}},
		{"even", []domain.ConversationTurn{turn("d", 3), turn("c", 2), turn("b", 1), turn("a", 0)}},
		{"odd", []domain.ConversationTurn{turn("c", 2), turn("b", 1), turn("a", 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reverseTurns(tt.turns)

			for i := 1; i < len(tt.turns); i++ {
				assert.False(t, tt.turns[i].Timestamp.Before(tt.turns[i-1].Timestamp),
					"turn %d should not precede turn %d", i, i-1)
			}
		})
	}

	t.Run("newest-first becomes oldest-first", func(t *testing.T) {
		turns := []domain.ConversationTurn{turn("newest", 2), turn("middle", 1), turn("oldest", 0)}

		reverseTurns(turns)

		assert.Equal(t, "oldest", turns[0].Content)
		assert.Equal(t, "middle", turns[1].Content)
		assert.Equal(t, "newest", turns[2].Content)
	})
}
