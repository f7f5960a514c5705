package migrations

func init() {
	Migrations.MustRegister(execFile("0003_create_quiz_results.sql"), dropTables("quiz_results"))
}
