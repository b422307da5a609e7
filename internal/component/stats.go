package component

// Stats holds an entity's attribute block and vitals.
// Pure data, zero methods — all mutations happen in systems and handlers.
type Stats struct {
	Name string

	Agility      int32
	Strength     int32
	Wisdom       int32
	Intelligence int32
	Charisma     int32
	Luck         int32
	Endurance    int32

	Health     int32
	MaxHealth  int32
	Mana       int32
	MaxMana    int32
	Stamina    int32
	MaxStamina int32

	Alive bool
}

// ApplyDamage clamps health into [0, MaxHealth]. Death flagging is the
// combat/AI systems' job, not the component's.
func ApplyDamage(s *Stats, dmg int32) {
	s.Health -= dmg
	if s.Health < 0 {
		s.Health = 0
	}
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
}
