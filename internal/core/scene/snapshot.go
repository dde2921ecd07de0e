package scene

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ObjectState is the renderer-facing copy of an Object.
type ObjectState struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Kind     Kind   `json:"kind"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Scale    Vec3   `json:"scale"`
}

// Snapshot is an immutable view of one frame, safe to hand to other
// goroutines.
type Snapshot struct {
	Scene   string        `json:"scene"`
	Frame   uint64        `json:"frame"`
	Elapsed float64       `json:"elapsed"`
	Best    float64       `json:"best"`
	Camera  Camera        `json:"camera"`
	Objects []ObjectState `json:"objects"`
}

func Capture(sceneName string, frame uint64, elapsed, best float64, cam Camera, reg *Registry) Snapshot {
	objects := reg.Objects()
	states := make([]ObjectState, len(objects))
	for i, o := range objects {
		states[i] = ObjectState{
			ID:       o.ID,
			Name:     o.Name,
			Kind:     o.Kind,
			Position: o.Position,
			Rotation: o.Rotation,
			Scale:    o.Scale,
		}
	}
	return Snapshot{
		Scene:   sceneName,
		Frame:   frame,
		Elapsed: elapsed,
		Best:    best,
		Camera:  cam,
		Objects: states,
	}
}

// Fingerprint hashes the camera and object transforms. Frame counters are
// excluded so two frames that look the same hash the same.
func (s Snapshot) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeVec := func(v Vec3) {
		for _, c := range [...]float64{v.X, v.Y, v.Z} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
			_, _ = d.Write(buf[:])
		}
	}
	writeVec(s.Camera.Position)
	writeVec(s.Camera.Target)
	for _, o := range s.Objects {
		_, _ = d.WriteString(o.ID)
		writeVec(o.Position)
		writeVec(o.Rotation)
		writeVec(o.Scale)
	}
	return d.Sum64()
}
