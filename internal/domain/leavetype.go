package domain

// LeaveType is a closed enumeration of leave categories. The LEGACY_* values
// are deprecated codes kept for read compatibility with historical rows; they
// are never accepted on new submissions.
type LeaveType string

const (
	LeaveAnnualPaid      LeaveType = "ANNUAL_PAID"
	LeaveExceptionalPaid LeaveType = "EXCEPTIONAL_PAID"
	LeaveSick            LeaveType = "SICK"
	LeaveMaternity       LeaveType = "MATERNITY"
	LeaveMenstrual       LeaveType = "MENSTRUAL"
	LeaveUnpaid          LeaveType = "UNPAID"

	LeaveLegacyPaid  LeaveType = "LEGACY_PAID"
	LeaveLegacyRTT   LeaveType = "LEGACY_RTT"
	LeaveLegacyOther LeaveType = "LEGACY_OTHER"
)

// Classification groups leave types by how they consume the yearly entitlement.
type Classification string

const (
	ClassPaid      Classification = "PAID"
	ClassUnpaid    Classification = "UNPAID"
	ClassMenstrual Classification = "MENSTRUAL"
)

// Classify maps a leave type, including deprecated codes, to its entitlement
// classification. Only PAID leave consumes the yearly balance.
func Classify(t LeaveType) (Classification, bool) {
	switch t {
	case LeaveAnnualPaid, LeaveExceptionalPaid, LeaveLegacyPaid, LeaveLegacyRTT:
		return ClassPaid, true
	case LeaveSick, LeaveMaternity, LeaveUnpaid, LeaveLegacyOther:
		return ClassUnpaid, true
	case LeaveMenstrual:
		return ClassMenstrual, true
	}
	return "", false
}

// ConsumesBalance reports whether requests of this type count against the
// paid-leave entitlement.
func (t LeaveType) ConsumesBalance() bool {
	c, ok := Classify(t)
	return ok && c == ClassPaid
}

// Submittable reports whether the type is accepted on new submissions.
// Deprecated codes remain readable but cannot be written.
func (t LeaveType) Submittable() bool {
	switch t {
	case LeaveAnnualPaid, LeaveExceptionalPaid, LeaveSick, LeaveMaternity, LeaveMenstrual, LeaveUnpaid:
		return true
	}
	return false
}

// RestrictedToGender returns the gender a type is restricted to, if any.
func (t LeaveType) RestrictedToGender() (Gender, bool) {
	switch t {
	case LeaveMaternity, LeaveMenstrual:
		return GenderFemale, true
	}
	return "", false
}
