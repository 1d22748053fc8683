package password

// commonPasswords is the deny list for exact (case-insensitive) matches,
// drawn from recurring entries in public breach corpora plus terms seen in
// our own signup attempts.
var commonPasswords = []string{
	"password", "password1", "password123", "passw0rd", "p@ssword",
	"p@ssw0rd", "123456", "1234567", "12345678", "123456789",
	"1234567890", "12345", "qwerty", "qwerty123", "qwertyuiop",
	"abc123", "abcd1234", "letmein", "welcome", "welcome1",
	"welcome123", "admin", "admin123", "administrator", "root",
	"login", "iloveyou", "sunshine", "princess", "dragon",
	"monkey", "shadow", "master", "superman", "batman",
	"trustno1", "starwars", "whatever", "freedom", "hello123",
	"charlie", "michael", "jennifer", "jordan23", "football",
	"baseball", "soccer", "hockey", "pokemon", "computer",
	"internet", "samsung", "google", "secret", "summer2024",
	"winter2024", "spring2024", "autumn2024", "changeme", "default",
	"temp1234", "test1234", "student", "student123", "teacher",
	"teacher123", "school123", "classroom", "quizlet", "homework",
}
