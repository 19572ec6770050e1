package board

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/identity"
	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
	"github.com/OPGLOL/opgl-matchboard-service/internal/roster"
	"github.com/OPGLOL/opgl-matchboard-service/internal/summary"
)

const (
	// MaxRecentGames bounds the recent form shown on a card
	MaxRecentGames = 8

	// DefaultHistoryChampionID is shown for history entries without a champion
	DefaultHistoryChampionID = 238

	blueTeamID = 100
	redTeamID  = 200
)

// BlobSink keeps the bytes of blob references so they can be served later
type BlobSink interface {
	Put(ctx context.Context, ref imageref.ResourceRef) error
}

// Builder turns retrieval records into presentation views
type Builder struct {
	ddragonVersion string
	recentGames    int
	blobs          BlobSink
}

// NewBuilder creates a Builder. Without a blob sink binary art is inlined
// as data URLs.
func NewBuilder(ddragonVersion string, recentGames int, blobs BlobSink) *Builder {
	if recentGames <= 0 || recentGames > MaxRecentGames {
		recentGames = MaxRecentGames
	}
	return &Builder{
		ddragonVersion: ddragonVersion,
		recentGames:    recentGames,
		blobs:          blobs,
	}
}

// ResolveImage resolves a payload and publishes blob bytes
func (builder *Builder) ResolveImage(ctx context.Context, payload imageref.Payload) imageref.ResourceRef {
	ref := imageref.Resolve(payload)
	if ref.Kind != imageref.RefBlob {
		return ref
	}

	if builder.blobs != nil {
		err := builder.blobs.Put(ctx, ref)
		if err == nil {
			ref.URL = BlobPath(ref.Handle)
			ref.Data = nil
			return ref
		}
		log.Warn().Err(err).Str("handle", ref.Handle).Msg("Failed to store blob, inlining")
	}

	return imageref.ResourceRef{
		Kind:     imageref.RefDataURL,
		URL:      ref.DataURL(),
		MIMEType: ref.MIMEType,
	}
}

// BlobPath is the HTTP path serving the bytes behind handle
func BlobPath(handle string) string {
	return "/api/v1/blobs/" + handle
}

// championArt resolves champion art and falls back to Data Dragon
func (builder *Builder) championArt(ctx context.Context, payload imageref.Payload, championID int) imageref.ResourceRef {
	ref := builder.ResolveImage(ctx, payload)
	if !ref.IsEmpty() || championID <= 0 {
		return ref
	}
	return imageref.ResourceRef{
		Kind: imageref.RefURL,
		URL:  fmt.Sprintf("https://ddragon.leagueoflegends.com/cdn/%s/img/champion/%d.png", builder.ddragonVersion, championID),
	}
}

// BuildCard builds the live card of one player including recent form
func (builder *Builder) BuildCard(ctx context.Context, player *models.GamePlayer) *models.PlayerCard {
	if player == nil {
		return nil
	}

	kills, deaths, assists := player.Kills.Int(), player.Deaths.Int(), player.Assists.Int()
	ratio, perfect := summary.KDARatio(kills, deaths, assists)

	return &models.PlayerCard{
		TeamID:     player.TeamID,
		PUUID:      player.PUUID,
		GameName:   player.GameName,
		TagLine:    player.TagLine,
		RiotID:     models.RiotID(player.GameName, player.TagLine),
		Position:   player.Position,
		ChampionID: player.ChampionID,
		Champion:   builder.championArt(ctx, player.ChampionPicture, player.ChampionID),
		Spells: []models.SpellView{
			{ID: player.Spell1ID, Picture: builder.ResolveImage(ctx, player.Spell1Picture)},
			{ID: player.Spell2ID, Picture: builder.ResolveImage(ctx, player.Spell2Picture)},
		},
		Kills:      kills,
		Deaths:     deaths,
		Assists:    assists,
		KDARatio:   ratio,
		PerfectKDA: perfect,
		GoldEarned: player.GoldEarned.Int(),
		Win:        player.Win,
		RecentForm: identity.RecentForm(player.Games, player.Ref(), builder.recentGames),
	}
}

// BuildBoard splits the live players into two teams and summarizes them.
// Team ids decide the split when every player carries one, list position
// (first five, next five) otherwise.
func (builder *Builder) BuildBoard(ctx context.Context, players []models.GamePlayer) *models.MatchBoard {
	var teamA, teamB []*models.PlayerCard

	if hasTeamIDs(players) {
		for index := range players {
			card := builder.BuildCard(ctx, &players[index])
			if isFirstTeam(players[index].TeamID) {
				teamA = append(teamA, card)
			} else {
				teamB = append(teamB, card)
			}
		}
	} else {
		for index := range players {
			if index >= 2*models.TeamSize {
				break
			}
			card := builder.BuildCard(ctx, &players[index])
			if index < models.TeamSize {
				teamA = append(teamA, card)
			} else {
				teamB = append(teamB, card)
			}
		}
	}

	board := &models.MatchBoard{
		TeamA: roster.Compose(teamA),
		TeamB: roster.Compose(teamB),
	}
	board.TeamASummary = summary.Summarize(board.TeamA)
	board.TeamBSummary = summary.Summarize(board.TeamB)
	return board
}

func hasTeamIDs(players []models.GamePlayer) bool {
	if len(players) == 0 {
		return false
	}
	for _, player := range players {
		if !isFirstTeam(player.TeamID) && !isSecondTeam(player.TeamID) {
			return false
		}
	}
	return true
}

func isFirstTeam(teamID int) bool {
	return teamID == blueTeamID || teamID == 1
}

func isSecondTeam(teamID int) bool {
	return teamID == redTeamID || teamID == 2
}

// BuildParticipantCard builds the post-game card of one participant
func (builder *Builder) BuildParticipantCard(ctx context.Context, match *models.MatchRecord, participant *models.Participant) *models.PlayerCard {
	var player models.IdentityPlayer
	if found, ok := identity.FindIdentity(match, participant.ParticipantID); ok {
		player = found.Player
	}

	gameName := player.GameName
	if gameName == "" {
		gameName = player.SummonerName
	}
	if gameName == "" {
		gameName = fmt.Sprintf("Player %d", participant.ParticipantID)
	}

	stats := participant.Stats
	kills, deaths, assists := stats.Kills.Int(), stats.Deaths.Int(), stats.Assists.Int()
	ratio, perfect := summary.KDARatio(kills, deaths, assists)

	level := stats.ChampLevel.Int()
	if level <= 0 {
		level = 1
	}

	spells := make([]models.SpellView, 0, 2)
	for _, spell := range []struct {
		id      int
		picture imageref.Payload
	}{
		{participant.Spell1ID, participant.Spell1Picture},
		{participant.Spell2ID, participant.Spell2Picture},
	} {
		if spell.id != 0 {
			spells = append(spells, models.SpellView{ID: spell.id, Picture: builder.ResolveImage(ctx, spell.picture)})
		}
	}

	itemIDs := stats.Items()
	itemPictures := stats.ItemPictures()
	items := make([]models.ItemView, 0, len(itemIDs))
	for slot, itemID := range itemIDs {
		if itemID != 0 {
			items = append(items, models.ItemView{ID: itemID, Picture: builder.ResolveImage(ctx, itemPictures[slot])})
		}
	}

	return &models.PlayerCard{
		ParticipantID: participant.ParticipantID,
		TeamID:        participant.TeamID,
		PUUID:         player.PUUID,
		GameName:      gameName,
		TagLine:       player.TagLine,
		RiotID:        models.RiotID(gameName, player.TagLine),
		Position:      participant.Position,
		ChampionID:    participant.ChampionID,
		ChampionLevel: level,
		Champion:      builder.championArt(ctx, participant.ChampionPicture, participant.ChampionID),
		Spells:        spells,
		Items:         items,
		Kills:         kills,
		Deaths:        deaths,
		Assists:       assists,
		KDARatio:      ratio,
		PerfectKDA:    perfect,
		GoldEarned:    stats.GoldEarned.Int(),
		DamageDealt:   stats.TotalDamageDealtToChampions.Int(),
		Win:           stats.Win,
	}
}

// BuildMatchDetail groups the participants of a completed game by team.
// A 100 versus 200 game is shown as two five-slot rosters with the losing
// team first; any other layout lists each team by ascending id.
func (builder *Builder) BuildMatchDetail(ctx context.Context, match *models.MatchRecord) *models.MatchDetail {
	detail := &models.MatchDetail{
		GameID:       match.GameID,
		GameMode:     match.GameMode,
		GameType:     summary.QueueLabel(match.QueueID, match.GameMode),
		QueueID:      match.QueueID,
		GameDuration: match.GameDuration,
		GameTime:     formatGameTime(match.GameCreation),
		Teams:        []models.TeamView{},
	}

	teams := make(map[int][]*models.PlayerCard)
	teamIDs := make([]int, 0, 2)
	for index := range match.Participants {
		participant := &match.Participants[index]
		if _, seen := teams[participant.TeamID]; !seen {
			teamIDs = append(teamIDs, participant.TeamID)
		}
		teams[participant.TeamID] = append(teams[participant.TeamID], builder.BuildParticipantCard(ctx, match, participant))
	}

	_, hasBlue := teams[blueTeamID]
	_, hasRed := teams[redTeamID]
	detail.IsFiveVFive = len(teamIDs) == 2 && hasBlue && hasRed

	if detail.IsFiveVFive {
		blue := roster.Compose(teams[blueTeamID])
		red := roster.Compose(teams[redTeamID])
		blueView := models.TeamView{TeamID: blueTeamID, Players: blue[:], Summary: summary.Summarize(blue)}
		redView := models.TeamView{TeamID: redTeamID, Players: red[:], Summary: summary.Summarize(red)}

		if blueView.Summary.Win {
			detail.Teams = append(detail.Teams, redView, blueView)
		} else {
			detail.Teams = append(detail.Teams, blueView, redView)
		}
		return detail
	}

	sort.Ints(teamIDs)
	for _, teamID := range teamIDs {
		members := teams[teamID]
		detail.Teams = append(detail.Teams, models.TeamView{
			TeamID:  teamID,
			Players: members,
			Summary: summary.SummarizeMembers(members),
		})
	}
	return detail
}

// BuildHistory builds one history entry per game for the player behind ref
func (builder *Builder) BuildHistory(ctx context.Context, matches []models.MatchRecord, ref models.PlayerRef) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, len(matches))

	for index := range matches {
		match := &matches[index]
		entry := models.HistoryEntry{
			GameID:       match.GameID,
			ChampionID:   DefaultHistoryChampionID,
			GameMode:     match.GameMode,
			GameType:     summary.QueueLabel(match.QueueID, match.GameMode),
			GameTime:     formatGameTime(match.GameCreation),
			SummonerName: "Unknown",
		}

		var championPicture imageref.Payload
		if participantID, found := identity.Locate(match, ref); found {
			if participant, ok := identity.FindParticipant(match, participantID); ok {
				if participant.ChampionID != 0 {
					entry.ChampionID = participant.ChampionID
				}
				championPicture = participant.ChampionPicture
				entry.Win = participant.Stats.Win
				entry.Kills = participant.Stats.Kills.Int()
				entry.Deaths = participant.Stats.Deaths.Int()
				entry.Assists = participant.Stats.Assists.Int()
			}
			if owner, ok := identity.FindIdentity(match, participantID); ok {
				entry.ProfileIcon = owner.Player.ProfileIcon.Int()
				entry.TagLine = owner.Player.TagLine
				if owner.Player.SummonerName != "" {
					entry.SummonerName = owner.Player.SummonerName
				} else if owner.Player.GameName != "" {
					entry.SummonerName = owner.Player.GameName
				}
			}
		}

		entry.Champion = builder.championArt(ctx, championPicture, entry.ChampionID)
		entries = append(entries, entry)
	}

	return entries
}

// formatGameTime renders a creation timestamp as RFC3339. Values below 1e12
// are taken as seconds, larger ones as milliseconds.
func formatGameTime(creation int64) string {
	if creation <= 0 {
		return ""
	}
	if creation < 1e12 {
		return time.Unix(creation, 0).UTC().Format(time.RFC3339)
	}
	return time.UnixMilli(creation).UTC().Format(time.RFC3339)
}
