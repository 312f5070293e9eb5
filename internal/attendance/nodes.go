package attendance

import (
	"go-mes/internal/ancestry"
)

// RegisterChains wires the two attendance walk origins. The assigned
// chain goes through the member's home cell; the working chain starts
// at the cell actually worked. The resolver never crosses between
// them.
func RegisterChains(r *ancestry.Resolver) {
	r.RegisterChain(ancestry.LevelAttendanceAssigned,
		ancestry.LevelMember, ancestry.LevelCell, ancestry.LevelLine,
		ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
	r.RegisterChain(ancestry.LevelAttendanceWorking,
		ancestry.LevelCell, ancestry.LevelLine,
		ancestry.LevelLoop, ancestry.LevelZone, ancestry.LevelPlant)
}
