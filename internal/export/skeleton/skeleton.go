// Package skeleton converts armatures into flat, indexed bone lists.
//
// Bones are indexed in the declaration order of the armature's bone list.
// That index is what skinned meshes store in their bone_indices field.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/math"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Skeleton errors.
var (
	ErrDuplicateBone = errors.New("duplicate bone name")
	ErrUnknownParent = errors.New("bone parent not in skeleton")
	ErrTooManyBones  = errors.New("skeleton exceeds 65536 bones")
)

// Skeleton is a built skeleton with its bone index.
type Skeleton struct {
	Doc formats.Skeleton
	// Index maps bone names to their position in Doc.Bones.
	Index map[string]int
}

// Build flattens the armature instantiated by obj. The skeleton takes the
// object's name, since several objects may share one armature.
func Build(obj *scene.Object, arm *scene.Armature) (*Skeleton, error) {
	if len(arm.Bones) > 1<<16 {
		return nil, fmt.Errorf("%w: %s has %d", ErrTooManyBones, obj.Name, len(arm.Bones))
	}

	index := make(map[string]int, len(arm.Bones))
	for i, b := range arm.Bones {
		if _, dup := index[b.Name]; dup {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateBone, b.Name, obj.Name)
		}
		index[b.Name] = i
	}

	poses := make(map[string]scene.PoseBone, len(obj.Pose))
	for _, p := range obj.Pose {
		poses[p.Bone] = p
	}

	bones := make([]formats.Bone, len(arm.Bones))
	for i, b := range arm.Bones {
		pose, ok := poses[b.Name]
		if !ok {
			pose = scene.RestPose(b.Name)
		}
		bones[i] = formats.Bone{
			Name:       b.Name,
			Index:      i,
			RestMatrix: b.MatrixLocal.Mat4().Affine(),
			Pose:       buildPose(pose),
			Children:   []string{},
		}
		if b.Parent == "" {
			continue
		}
		pi, ok := index[b.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s in %s", ErrUnknownParent, b.Name, b.Parent, obj.Name)
		}
		parent := b.Parent
		bones[i].Parent = &parent
		bones[pi].Children = append(bones[pi].Children, b.Name)
	}

	return &Skeleton{
		Doc: formats.Skeleton{
			Name:                  obj.Name,
			WorldToSkeletonMatrix: obj.MatrixWorld.Mat4().Affine(),
			Bones:                 bones,
		},
		Index: index,
	}, nil
}

func buildPose(p scene.PoseBone) formats.Pose {
	m := math.Compose(math.V3(p.Location), math.QuatWXYZ(p.RotationQuaternion), math.V3(p.Scale))
	return formats.Pose{
		Location:           p.Location,
		RotationQuaternion: p.RotationQuaternion,
		Scale:              p.Scale,
		Matrix:             m.Affine(),
	}
}
