// Package cohort implements the pure membership logic shared by all
// student-cohort activities (exams, tasks, payments). It performs no I/O:
// callers load the current assignment set, run the functions here, and
// persist the result in one transaction.
package cohort

// StudentRef is one entry of a submitted cohort: the student plus the class
// snapshot the client captured for them at submission time. The snapshot is
// stored on the assignment verbatim and never re-derived from the student's
// live classroom.
type StudentRef struct {
	StudentID int
	ClassID   int
	ClassName string
}

// Assignment links one activity to one student. Outcome is the mutable
// per-student result: a nilable score for exams and tasks, a payment status
// for payments.
type Assignment[O any] struct {
	StudentID int
	ClassID   int
	ClassName string
	Outcome   O
}

// Duplicates returns the student IDs that appear more than once in refs,
// in first-occurrence order. A non-empty result means the whole submission
// must be rejected, regardless of what already exists in storage.
func Duplicates(refs []StudentRef) []int {
	seen := make(map[int]int, len(refs))
	var dups []int
	for _, ref := range refs {
		seen[ref.StudentID]++
		if seen[ref.StudentID] == 2 {
			dups = append(dups, ref.StudentID)
		}
	}
	return dups
}

// Reconcile builds the replacement assignment set for an activity whose
// cohort is being edited. For every desired ref, the outcome of an existing
// assignment for the same student is carried forward unchanged; new members
// get the zero outcome. Students present in existing but absent from
// desired are dropped along with their outcome. Class snapshot fields
// always come from the submitted refs.
//
// The result is a full replacement: callers delete the activity's current
// assignment rows and insert the returned set.
func Reconcile[O any](existing []Assignment[O], desired []StudentRef, zero O) []Assignment[O] {
	current := make(map[int]Assignment[O], len(existing))
	for _, a := range existing {
		current[a.StudentID] = a
	}

	out := make([]Assignment[O], 0, len(desired))
	for _, ref := range desired {
		outcome := zero
		if prev, ok := current[ref.StudentID]; ok {
			outcome = prev.Outcome
		}
		out = append(out, Assignment[O]{
			StudentID: ref.StudentID,
			ClassID:   ref.ClassID,
			ClassName: ref.ClassName,
			Outcome:   outcome,
		})
	}
	return out
}
