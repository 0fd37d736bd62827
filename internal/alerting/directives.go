package alerting

// Directive is the standard response-protocol copy for one action, used
// by outbound mail and the phone display pages.
type Directive struct {
	// Title is the human-friendly form of the action ("Lockdown").
	Title string
	// Text is the instruction broadcast with the action.
	Text string
}

var directives = map[Action]Directive{
	ActionHold: {
		Title: "Hold",
		Text:  "HOLD in your Room or Area. Clear the hallways. Stay in your classrooms and do not release anyone until the HOLD is released.",
	},
	ActionSecure: {
		Title: "Secure",
		Text:  "SECURE the perimeter and outside doors. Keep doors locked. Business as usual inside the classroom. Increase situational awareness.",
	},
	ActionShelter: {
		Title: "Shelter",
		Text:  "Move to your designated shelter. Follow the hazard-specific safety strategy. Account for students.",
	},
	ActionEvacuate: {
		Title: "Evacuate",
		Text:  "Evacuate to the designated location. Bring roll sheets and go-bags. Account for students.",
	},
	ActionLockdown: {
		Title: "Lockdown",
		Text:  "LOCKS, LIGHTS, OUT OF SIGHT. Students: move away from sight and maintain silence. Teachers: lock classroom doors, lights out, move away from sight, maintain silence. Do not open the door.",
	},
}

// DirectiveFor returns the copy for an action, with a generic fallback
// for actions added through configuration.
func DirectiveFor(action Action) Directive {
	if d, ok := directives[NormalizeAction(string(action))]; ok {
		return d
	}
	return Directive{Title: "Emergency", Text: "Follow your site procedures."}
}
