package enums

import "fmt"

// ConsensusBookID is the reserved id the odds API uses for its own consensus line.
const ConsensusBookID = 0

const consensusBookName = "Consensus"

var bookmakerNames = map[int]string{
	10: "FanDuel",
	12: "DraftKings",
	18: "Caesars",
	19: "BetMGM",
	33: "ESPNBet",
}

// BookmakerName maps a numeric book id to its label.
// Ids outside the table are never dropped; they become "Book ID <n>".
func BookmakerName(id int) string {
	if id == ConsensusBookID {
		return consensusBookName
	}
	if name, ok := bookmakerNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Book ID %d", id)
}
