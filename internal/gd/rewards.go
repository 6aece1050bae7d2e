package gd

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestType is what a quest counts.
type QuestType int

const (
	QuestOrbs QuestType = iota + 1
	QuestCoins
	QuestStars
)

// Quest is one daily challenge.
type Quest struct {
	ID       int       `json:"id"`
	Type     QuestType `json:"type"`
	Amount   int       `json:"amount"`
	Reward   int       `json:"reward"`
	Name     string    `json:"name"`
	Replaced int       `json:"seconds_until_replaced"`
}

// ParseQuests parses a decoded getGJChallenges payload:
// prefix:playerID:chk:udid:accountID:timeLeft:quest1:quest2:quest3 with each
// quest "id,type,amount,reward,name".
func ParseQuests(payload string) ([]Quest, error) {
	parts := strings.Split(payload, ":")
	if len(parts) < 7 {
		return nil, fmt.Errorf("quests payload has %d fields", len(parts))
	}
	left, _ := strconv.Atoi(parts[5])
	var quests []Quest
	for _, raw := range parts[6:] {
		fields := strings.SplitN(raw, ",", 5)
		if len(fields) < 5 {
			continue
		}
		q := Quest{Name: fields[4], Replaced: left}
		q.ID, _ = strconv.Atoi(fields[0])
		typ, _ := strconv.Atoi(fields[1])
		q.Type = QuestType(typ)
		q.Amount, _ = strconv.Atoi(fields[2])
		q.Reward, _ = strconv.Atoi(fields[3])
		quests = append(quests, q)
	}
	return quests, nil
}

// ChestContents is what opening a chest grants.
type ChestContents struct {
	Orbs     int `json:"orbs"`
	Diamonds int `json:"diamonds"`
	Shard    int `json:"shard"`
	Keys     int `json:"keys"`
}

// Chest is the small or large reward chest.
type Chest struct {
	Contents    ChestContents `json:"contents"`
	SecondsLeft int           `json:"seconds_left"`
	Opened      int           `json:"opened"`
}

// ParseChests parses a decoded getGJRewards payload:
// prefix:playerID:chk:udid:accountID:left1:chest1:count1:left2:chest2:count2:type
// with each chest "orbs,diamonds,shard,keys".
func ParseChests(payload string) (small, large Chest, err error) {
	parts := strings.Split(payload, ":")
	if len(parts) < 11 {
		return Chest{}, Chest{}, fmt.Errorf("chests payload has %d fields", len(parts))
	}
	return parseChest(parts[5:8]), parseChest(parts[8:11]), nil
}

func parseChest(parts []string) Chest {
	var c Chest
	c.SecondsLeft, _ = strconv.Atoi(parts[0])
	contents := strings.Split(parts[1], ",")
	values := make([]int, 4)
	for i := 0; i < len(contents) && i < len(values); i++ {
		values[i], _ = strconv.Atoi(contents[i])
	}
	c.Contents = ChestContents{Orbs: values[0], Diamonds: values[1], Shard: values[2], Keys: values[3]}
	c.Opened, _ = strconv.Atoi(parts[2])
	return c
}
