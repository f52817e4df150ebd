package models

// Behaviour instructions shape how the simulated patient answers. The keys
// are stored in the admin settings when a behaviour is pinned; the
// instructions are injected into the system prompt verbatim.
var behaviourOptions = map[string]string{
	"knapp": "Beantworte Fragen grundsätzlich sehr knapp. Gib nur so viele Informationen preis, " +
		"wie direkt erfragt wurden.",
	"redselig": "Beginne Antworten gern mit kleinen Anekdoten über Alltag, Beruf oder Familie. " +
		"Gehe auf medizinische Fragen nur beiläufig - aber korrekt - ein und lenke bei manchen Fragen " +
		"wieder auf private Themen um.",
	"ängstlich": "Wirke angespannt und vorsichtig, erwähne konkrete Sorgen (z. B. vor Krankenhaus " +
		"oder Krebs) nur, wenn die Fragen darauf hindeuten, und vermeide Wiederholungen.",
	"wissbegierig": "Wirke vorbereitet, zitiere gelegentlich medizinische Begriffe aus " +
		"Internetrecherchen und frage aktiv nach Differenzialdiagnosen, Untersuchungen oder Leitlinien.",
	"verharmlosend": "Spiele Beschwerden konsequent herunter, nutze variierende Phrasen wie " +
		"'Ist nicht so schlimm', vermeide Wiederholungen. Gib Symptome erst auf konkrete Nachfrage " +
		"preis und betone, dass du eigentlich gesund wirken möchtest.",
}

// BehaviourOptions returns a copy of the behaviour catalogue.
func BehaviourOptions() map[string]string {
	options := make(map[string]string, len(behaviourOptions))
	for key, instruction := range behaviourOptions {
		options[key] = instruction
	}
	return options
}

// BehaviourInstruction returns the instruction for key and whether it exists.
func BehaviourInstruction(key string) (string, bool) {
	instruction, ok := behaviourOptions[key]
	return instruction, ok
}

// BehaviourKeys returns the behaviour keys in stable order.
func BehaviourKeys() []string {
	return []string{"knapp", "redselig", "ängstlich", "wissbegierig", "verharmlosend"}
}
