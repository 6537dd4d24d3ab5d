package casregistry

// Usage restricts which programs accept a given backend.
//
// Backends are linked at build time: a backend registers itself in init() and
// a binary enables it by importing the package, usually as a blank import.
type Usage uint8

const (
	// UsageCLI marks backends available to the cidproof CLI.
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks backends the cidproofd daemon may serve.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }

func (u Usage) String() string {
	switch u {
	case UsageCLI:
		return "cli"
	case UsageDaemon:
		return "daemon"
	case UsageCLI | UsageDaemon:
		return "cli,daemon"
	default:
		return "none"
	}
}
