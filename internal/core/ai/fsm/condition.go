package fsm

// Condition is a transition trigger. Conditions are edge-triggered: a latched
// condition is consumed by the next ExecuteAI whether or not it matched.
type Condition int

const (
	None Condition = iota
	Idle
	SeesEnemy
	MoveToObjective
	Protect
	Spawned
	Died
	Dodge
)

var conditionNames = [...]string{
	None:            "none",
	Idle:            "idle",
	SeesEnemy:       "sees_enemy",
	MoveToObjective: "move_to_objective",
	Protect:         "protect",
	Spawned:         "spawned",
	Died:            "died",
	Dodge:           "dodge",
}

func (c Condition) String() string {
	if c >= 0 && int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return "unknown"
}

// ParseCondition maps a condition name back to its value.
func ParseCondition(s string) (Condition, bool) {
	for i, name := range conditionNames {
		if name == s {
			return Condition(i), true
		}
	}
	return None, false
}
