package migrations

func init() {
	Migrations.MustRegister(execFile("0001_create_quizzes.sql"), dropTables("quizzes"))
}
