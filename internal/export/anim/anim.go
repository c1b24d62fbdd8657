// Package anim classifies animation curves by the property they drive and
// keeps the ones that carry information.
package anim

import (
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

var (
	bonePath      = regexp.MustCompile(`^pose\.bones\["(.+)"\]\.(location|scale|rotation_quaternion)$`)
	transformPath = regexp.MustCompile(`^(location|scale|rotation_quaternion|rotation_euler)$`)
)

// components is the width of each animatable channel.
var components = map[string]int{
	"location":            3,
	"scale":               3,
	"rotation_quaternion": 4,
	"rotation_euler":      3,
}

// Stats counts what happened to the curves of one action.
type Stats struct {
	Kept         int
	Unmatched    int
	Constant     int
	SkeletonRoot int
	UnknownBone  int
}

// Dropped returns the number of curves that were not kept.
func (s Stats) Dropped() int {
	return s.Unmatched + s.Constant + s.SkeletonRoot + s.UnknownBone
}

// TargetPath maps a raw property path and array index to its exported form:
// bone/<bone>/<channel>/<index> or transform/<channel>/<index>. bone is set
// for bone channels. ok is false when the path matches neither form or the
// index is outside the channel.
func TargetPath(dataPath string, index int) (target, bone string, ok bool) {
	if m := bonePath.FindStringSubmatch(dataPath); m != nil {
		if !inRange(m[2], index) {
			return "", "", false
		}
		return fmt.Sprintf("bone/%s/%s/%d", m[1], m[2], index), m[1], true
	}
	if m := transformPath.FindStringSubmatch(dataPath); m != nil {
		if !inRange(m[1], index) {
			return "", "", false
		}
		return "transform/" + m[1] + "/" + strconv.Itoa(index), "", true
	}
	return "", "", false
}

func inRange(channel string, index int) bool {
	return index >= 0 && index < components[channel]
}

// IsConstant reports whether the keyframes hold at most one distinct value.
func IsConstant(keys [][2]float32) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i][1] != keys[0][1] {
			return false
		}
	}
	return true
}

// Extract returns the exportable curves of the action driving obj, or nil
// when none survive.
//
// Object transform curves of armature objects are dropped: the skeleton
// root transform is not animated by this format. bones, when non-nil,
// restricts bone curves to bones of the object's skeleton.
func Extract(obj *scene.Object, act *scene.Action, bones map[string]int) (*formats.Action, Stats) {
	log := logger.Named("anim").With(zap.String("object", obj.Name), zap.String("action", act.Name))
	skeletonRoot := obj.Kind == scene.KindArmature

	var stats Stats
	var curves []formats.Curve
	for _, fc := range act.Curves {
		target, bone, ok := TargetPath(fc.DataPath, fc.Index)
		switch {
		case !ok:
			stats.Unmatched++
			log.Debug("dropping curve with unsupported path", zap.String("path", fc.DataPath), zap.Int("index", fc.Index))
			continue
		case bone == "" && skeletonRoot:
			stats.SkeletonRoot++
			log.Debug("dropping skeleton root transform curve", zap.String("path", target))
			continue
		case bone != "" && bones != nil:
			if _, known := bones[bone]; !known {
				stats.UnknownBone++
				log.Debug("dropping curve of unknown bone", zap.String("path", target))
				continue
			}
		}
		if IsConstant(fc.Keyframes) {
			stats.Constant++
			continue
		}

		keys := make([]formats.Keyframe, len(fc.Keyframes))
		for i, k := range fc.Keyframes {
			keys[i] = formats.Keyframe{Time: k[0], Value: k[1]}
		}
		curves = append(curves, formats.Curve{TargetPath: target, Keyframes: keys})
		stats.Kept++
	}

	if len(curves) == 0 {
		return nil, stats
	}
	return &formats.Action{TargetObject: obj.Name, Curves: curves}, stats
}
