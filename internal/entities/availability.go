package entities

// Rule names, also used as JSON keys of the validations object.
const (
	RuleDayOpen       = "jour_ouvert"
	RuleLeadTime      = "24h_avance"
	RuleFirstBooking  = "premiere_reservation"
	RuleSlotAvailable = "heure_disponible"
)

// Fixed user facing messages, one per failing rule.
const (
	MessageAllowed         = "Réservation possible"
	MessageClosed          = "Le restaurant est fermé ce jour"
	MessageLeadTime        = "Réservation 24h à l'avance minimum"
	MessageAlreadyBooked   = "Une réservation par séjour maximum"
	MessageSlotUnavailable = "Heure non disponible"
)

type Validations struct {
	DayOpen       bool  `json:"jour_ouvert"`
	LeadTime      bool  `json:"24h_avance"`
	FirstBooking  bool  `json:"premiere_reservation"`
	SlotAvailable *bool `json:"heure_disponible,omitempty"`
}

// EligibilityResult is the composite verdict for a reservation request.
type EligibilityResult struct {
	Overall        bool        `json:"peut_reserver"`
	Validations    Validations `json:"validations"`
	AvailableSlots []string    `json:"heures_disponibles"`
	Message        string      `json:"message"`
}

// PerRule returns the evaluated rules keyed by name. The slot rule is only
// present when a slot was requested.
func (r EligibilityResult) PerRule() map[string]bool {
	rules := map[string]bool{
		RuleDayOpen:      r.Validations.DayOpen,
		RuleLeadTime:     r.Validations.LeadTime,
		RuleFirstBooking: r.Validations.FirstBooking,
	}
	if r.Validations.SlotAvailable != nil {
		rules[RuleSlotAvailable] = *r.Validations.SlotAvailable
	}
	return rules
}

// FailedRules lists failing rules in checking order.
func (r EligibilityResult) FailedRules() []string {
	var failed []string
	if !r.Validations.DayOpen {
		failed = append(failed, RuleDayOpen)
	}
	if !r.Validations.LeadTime {
		failed = append(failed, RuleLeadTime)
	}
	if !r.Validations.FirstBooking {
		failed = append(failed, RuleFirstBooking)
	}
	if r.Validations.SlotAvailable != nil && !*r.Validations.SlotAvailable {
		failed = append(failed, RuleSlotAvailable)
	}
	return failed
}

type AvailableSlotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"heures_disponibles"`
}
