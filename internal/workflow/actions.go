package workflow

// Action is something the author may do at a step.
type Action string

const (
	ActionContinue Action = "continue"
	ActionRefine   Action = "refine"
	ActionHelp     Action = "help"
	ActionIdeas    Action = "ideas"
	ActionWhatIf   Action = "whatif"
)

// AllowedActions is the only place action legality is decided.
func AllowedActions(step Step) []Action {
	info, ok := Lookup(step)
	if !ok {
		return nil
	}
	switch info.Kind {
	case KindInitiator:
		return []Action{ActionContinue}
	case KindClarifier:
		return []Action{ActionContinue, ActionRefine, ActionHelp}
	case KindTerminal:
		return []Action{}
	default:
		return []Action{ActionIdeas, ActionWhatIf, ActionHelp, ActionContinue}
	}
}

// Allows reports whether action is legal at step.
func Allows(step Step, action Action) bool {
	for _, allowed := range AllowedActions(step) {
		if allowed == action {
			return true
		}
	}
	return false
}
