package migrations

func init() {
	Migrations.MustRegister(execFile("0002_create_teams.sql"), dropTables("join_requests", "team_members", "teams"))
}
