package roster

import (
	"sort"
	"strings"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// UnknownRolePriority sorts players without a recognised role last
const UnknownRolePriority = 99

var rolePriority = map[string]int{
	"TOP":     0,
	"JUNGLE":  1,
	"MIDDLE":  2,
	"BOTTOM":  3,
	"ADC":     3,
	"CARRY":   3,
	"UTILITY": 4,
	"SUPPORT": 4,
}

// RolePriority returns the sort key of a role, ignoring case.
// Surrounding whitespace is not trimmed, so " TOP" is an unknown role.
func RolePriority(role string) int {
	if priority, ok := rolePriority[strings.ToUpper(role)]; ok {
		return priority
	}
	return UnknownRolePriority
}

// Compose orders players by role and fits them into exactly five slots.
// Nil entries are dropped before ordering; empty slots are appended as nil
// and anything past the fifth player is cut.
func Compose(players []*models.PlayerCard) models.Roster {
	ordered := make([]*models.PlayerCard, 0, len(players))
	for _, player := range players {
		if player != nil {
			ordered = append(ordered, player)
		}
	}

	sort.SliceStable(ordered, func(left, right int) bool {
		return RolePriority(ordered[left].Position) < RolePriority(ordered[right].Position)
	})

	var roster models.Roster
	copy(roster[:], ordered)
	return roster
}

// Members returns the non-empty slots of a roster in order
func Members(roster models.Roster) []*models.PlayerCard {
	members := make([]*models.PlayerCard, 0, models.TeamSize)
	for _, slot := range roster {
		if slot != nil {
			members = append(members, slot)
		}
	}
	return members
}
