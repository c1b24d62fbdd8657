package scene

import "gopkg.in/yaml.v3"

// UnmarshalYAML applies authoring defaults before decoding: unit scale,
// identity rotation and XYZ Euler mode.
func (o *Object) UnmarshalYAML(value *yaml.Node) error {
	type plain Object
	p := plain{
		RotationMode:       RotationXYZ,
		RotationQuaternion: [4]float32{1, 0, 0, 0},
		RotationAxisAngle:  [4]float32{0, 0, 1, 0},
		Scale:              [3]float32{1, 1, 1},
	}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = Object(p)
	return nil
}

// UnmarshalYAML applies rest-pose defaults before decoding.
func (p *PoseBone) UnmarshalYAML(value *yaml.Node) error {
	type plain PoseBone
	v := plain{
		RotationQuaternion: [4]float32{1, 0, 0, 0},
		Scale:              [3]float32{1, 1, 1},
	}
	if err := value.Decode(&v); err != nil {
		return err
	}
	*p = PoseBone(v)
	return nil
}

// RestPose returns the pose of a bone that was never moved.
func RestPose(bone string) PoseBone {
	return PoseBone{
		Bone:               bone,
		RotationQuaternion: [4]float32{1, 0, 0, 0},
		Scale:              [3]float32{1, 1, 1},
	}
}
