package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sophrologie-backend/internal/models"
)

// listOp is one random structural mutation applied during a property run.
type listOp struct {
	kind  int
	index int
	to    int
}

func genListOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 4),
		gen.IntRange(0, 9),
		gen.IntRange(0, 9),
	).Map(func(values []interface{}) listOp {
		return listOp{
			kind:  values[0].(int),
			index: values[1].(int),
			to:    values[2].(int),
		}
	})
}

func applyListOp(sections models.PageSections, op listOp) models.PageSections {
	targetID := ""
	if len(sections) > 0 {
		targetID = sections[op.index%len(sections)].ID
	}

	switch op.kind {
	case 0:
		result, _ := AddSection(sections, "text")
		return result
	case 1:
		return DeleteSection(sections, targetID)
	case 2:
		result, _ := DuplicateSection(sections, targetID)
		return result
	case 3:
		return Reorder(sections, op.index, op.to)
	default:
		return SetVisible(sections, targetID, op.to%2 == 0)
	}
}

func TestSectionListOperationInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("order stays a dense 0..n-1 permutation with unique ids", prop.ForAll(
		func(ops []listOp) bool {
			sections := sampleSections()
			for _, op := range ops {
				sections = applyListOp(sections, op)

				seen := make(map[string]bool, len(sections))
				for i, section := range sections {
					if section.Order != i {
						return false
					}
					if seen[section.ID] {
						return false
					}
					seen[section.ID] = true
				}
			}
			return true
		},
		gen.SliceOf(genListOp()),
	))

	properties.Property("operations never mutate their input", prop.ForAll(
		func(op listOp) bool {
			sections := sampleSections()
			snapshot := sections.Clone()
			applyListOp(sections, op)
			return sections.Equal(snapshot)
		},
		genListOp(),
	))

	properties.TestingRun(t)
}
