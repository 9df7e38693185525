package planner

import (
	"sort"

	"github.com/samber/lo"

	"github.com/cuemby/ferry/pkg/types"
)

// Plan computes the ordered change list that turns the actual container set
// into the target one. Actual images contribute REMOVE changes, target
// images contribute ADD changes; after a stable sort by container name,
// adjacent REMOVE/ADD pairs over the same name and digest fold into KEEP.
//
// Sorting by container name interleaves replica suffixes (x-0, x-1, ...),
// so while one replica is being replaced its siblings stay untouched.
func Plan(actual, target []types.Image) []types.Change {
	changes := expand(actual, target)

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].ContainerName < changes[j].ContainerName
	})

	return fold(changes)
}

// Counts reports how many changes carry each operator
func Counts(changes []types.Change) (adds, keeps, removes int) {
	for _, change := range changes {
		switch change.Operator {
		case types.OperatorAdd:
			adds++
		case types.OperatorKeep:
			keeps++
		case types.OperatorRemove:
			removes++
		}
	}
	return adds, keeps, removes
}

// expand emits one change per container name with REMOVEs strictly before
// ADDs, the order the stable sort preserves within a name.
func expand(actual, target []types.Image) []types.Change {
	removes := lo.FlatMap(actual, func(image types.Image, _ int) []types.Change {
		return imageChanges(types.OperatorRemove, image)
	})
	adds := lo.FlatMap(target, func(image types.Image, _ int) []types.Change {
		return imageChanges(types.OperatorAdd, image)
	})
	return append(removes, adds...)
}

func imageChanges(operator types.Operator, image types.Image) []types.Change {
	return lo.Map(image.Intent.ContainerNames, func(name string, _ int) types.Change {
		return types.Change{
			Operator:      operator,
			ContainerName: name,
			ImageID:       image.ID,
			ImageDigest:   image.Digest,
			Networks:      image.Intent.Networks,
			PortMappings:  image.Intent.PortMappings,
			VolumeMounts:  image.Intent.VolumeMounts,
			HealthCheck:   image.Intent.HealthCheck,
		}
	})
}

// fold cancels churn: a REMOVE directly followed by an ADD of the same
// container name and image digest becomes a single KEEP. Digest equality
// implies the images are interchangeable, so the remaining fields of the
// REMOVE stay valid.
func fold(changes []types.Change) []types.Change {
	var folded []types.Change
	for _, next := range changes {
		if n := len(folded); n > 0 {
			previous := &folded[n-1]
			if previous.Operator == types.OperatorRemove &&
				next.Operator == types.OperatorAdd &&
				previous.ContainerName == next.ContainerName &&
				previous.ImageDigest == next.ImageDigest {
				previous.Operator = types.OperatorKeep
				continue
			}
		}
		folded = append(folded, next)
	}
	return folded
}
