package tokenserver

import (
	"fmt"
	"math/rand"
)

var (
	adjectives = []string{
		"Agile", "Brave", "Calm", "Clever", "Curious", "Eager", "Fancy", "Gentle",
		"Happy", "Jolly", "Keen", "Lively", "Merry", "Nimble", "Proud", "Quiet",
		"Rapid", "Shiny", "Sunny", "Swift", "Witty", "Zesty",
	}
	animals = []string{
		"Alpaca", "Badger", "Beaver", "Bison", "Falcon", "Ferret", "Gecko", "Heron",
		"Koala", "Lemur", "Lynx", "Marmot", "Narwhal", "Ocelot", "Otter", "Panda",
		"Puffin", "Quokka", "Raven", "Tapir", "Walrus", "Wombat",
	}
)

// NameFunc produces a display identity for a new token.
type NameFunc func() string

// RandomName returns names like "SwiftOtter42".
func RandomName() string {
	return fmt.Sprintf("%s%s%d",
		adjectives[rand.Intn(len(adjectives))],
		animals[rand.Intn(len(animals))],
		rand.Intn(100))
}
