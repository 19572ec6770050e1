package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

func card(name string, position string) *models.PlayerCard {
	return &models.PlayerCard{GameName: name, Position: position}
}

func names(roster models.Roster) []string {
	result := make([]string, 0, len(roster))
	for _, slot := range roster {
		if slot == nil {
			result = append(result, "")
			continue
		}
		result = append(result, slot.GameName)
	}
	return result
}

func TestComposeAlwaysFiveSlots(t *testing.T) {
	for _, size := range []int{0, 1, 3, 5, 7, 10, 12} {
		t.Run(fmt.Sprintf("size%d", size), func(t *testing.T) {
			players := make([]*models.PlayerCard, 0, size)
			for index := 0; index < size; index++ {
				players = append(players, card(fmt.Sprintf("p%d", index), ""))
			}

			roster := Compose(players)

			assert.Len(t, roster, models.TeamSize)
			assert.Len(t, Members(roster), min(size, models.TeamSize))
		})
	}
}

func TestComposeOrdersByRole(t *testing.T) {
	roster := Compose([]*models.PlayerCard{
		card("support", "SUPPORT"),
		card("mid", "middle"),
		card("adc", "Bottom"),
		card("top", "TOP"),
		card("jungle", "JUNGLE"),
	})

	assert.Equal(t, []string{"top", "jungle", "mid", "adc", "support"}, names(roster))
}

func TestComposeIsStable(t *testing.T) {
	roster := Compose([]*models.PlayerCard{
		card("firstUtility", "UTILITY"),
		card("top", "TOP"),
		card("secondUtility", "utility"),
	})

	assert.Equal(t, []string{"top", "firstUtility", "secondUtility", "", ""}, names(roster))
}

func TestComposeDropsNilAndPadsAtEnd(t *testing.T) {
	roster := Compose([]*models.PlayerCard{nil, card("unknown", "NONE"), nil, card("jungle", "JUNGLE")})

	assert.Equal(t, []string{"jungle", "unknown", "", "", ""}, names(roster))
	assert.Nil(t, roster[2])
	assert.Nil(t, roster[4])
}

func TestComposeTruncatesAfterSorting(t *testing.T) {
	roster := Compose([]*models.PlayerCard{
		card("noRole1", ""),
		card("noRole2", ""),
		card("support", "SUPPORT"),
		card("carry", "CARRY"),
		card("mid", "MIDDLE"),
		card("jungle", "JUNGLE"),
		card("top", "TOP"),
	})

	assert.Equal(t, []string{"top", "jungle", "mid", "carry", "support"}, names(roster))
}

func TestRolePriority(t *testing.T) {
	assert.Equal(t, 0, RolePriority("top"))
	assert.Equal(t, 3, RolePriority("ADC"))
	assert.Equal(t, 4, RolePriority("support"))
	assert.Equal(t, UnknownRolePriority, RolePriority(" support "))
	assert.Equal(t, UnknownRolePriority, RolePriority(" TOP"))
	assert.Equal(t, UnknownRolePriority, RolePriority(""))
	assert.Equal(t, UnknownRolePriority, RolePriority("MID"))
}
