package synth

import "fmt"

// ----- Param ----- //

// ParamID names a timbre parameter broadcast to every slot.
type ParamID int

const (
	ParamVolume ParamID = iota
	ParamVibrato
	ParamPartials
	ParamPartialsWobble
	ParamBaseWaveType
	ParamPartialsWaveType
	ParamFMRatio
	ParamFMAmp
	ParamGlide
	ParamAttack
	ParamDecay
	ParamSustain
	numParams
)

var paramNames = [numParams]string{
	"volume",
	"vibrato",
	"partials",
	"partials_wobble",
	"base_wave_type",
	"partials_wave_type",
	"fm_ratio",
	"fm_amp",
	"glide",
	"attack",
	"decay",
	"sustain",
}

func (id ParamID) Valid() bool {
	return id >= 0 && id < numParams
}

func (id ParamID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("param(%d)", int(id))
	}
	return paramNames[id]
}

// ParseParamID accepts the snake_case name of a parameter.
func ParseParamID(name string) (ParamID, error) {
	for i, n := range paramNames {
		if n == name {
			return ParamID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown param %q", name)
}

// ParamIDs lists every parameter in id order.
func ParamIDs() []ParamID {
	ids := make([]ParamID, numParams)
	for i := range ids {
		ids[i] = ParamID(i)
	}
	return ids
}
