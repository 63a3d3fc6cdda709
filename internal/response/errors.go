package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrScoreOutOfRange ErrCode = "SCORE_OUT_OF_RANGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Cohort activities ─────────────────────────────────────────────
	ErrActivityNameTaken    ErrCode = "ACTIVITY_NAME_TAKEN"
	ErrDuplicateStudent     ErrCode = "DUPLICATE_COHORT_STUDENT"
	ErrEmptyCohort          ErrCode = "EMPTY_COHORT"
	ErrUnknownStudent       ErrCode = "UNKNOWN_STUDENT"
	ErrUnknownClassroom     ErrCode = "UNKNOWN_CLASSROOM"
	ErrAssignmentNotFound   ErrCode = "ASSIGNMENT_NOT_FOUND"
	ErrNoActiveAcademicYear ErrCode = "NO_ACTIVE_ACADEMIC_YEAR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrAdminAccessOnly:
		return "Sumber daya ini terbatas untuk administrator."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."
	case ErrScoreOutOfRange:
		return "Nilai harus berada di antara 0 dan 100."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrDependencyExists:
		return "Data tidak dapat dihapus karena masih digunakan oleh data lain."

	// ─── Cohort activities ─────────────────────────────────────────────
	case ErrActivityNameTaken:
		return "Nama kegiatan sudah digunakan pada mata pelajaran dan tahun ajaran yang sama."
	case ErrDuplicateStudent:
		return "Terdapat siswa yang muncul lebih dari satu kali dalam daftar."
	case ErrEmptyCohort:
		return "Minimal satu siswa harus dipilih."
	case ErrUnknownStudent:
		return "Terdapat siswa yang tidak terdaftar."
	case ErrUnknownClassroom:
		return "Terdapat kelas yang tidak terdaftar."
	case ErrAssignmentNotFound:
		return "Data penugasan tidak ditemukan pada kegiatan ini."
	case ErrNoActiveAcademicYear:
		return "Tidak ada tahun ajaran yang aktif."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
