package main

var (
	shortDescription = "A single-page portfolio site"

	longDescription = `portfolio serves a single-page personal portfolio: About, Skills, Projects
and Contact sections that fade in as they scroll into view, skill bars that
fill one after another, and an autoplaying projects carousel.

Configuration comes from the environment (or a .env file):
  PORT, GIN_MODE, LOG_LEVEL, CONTENT_PATH, DB_PATH, ADMIN_USERNAME,
  ADMIN_PASSWORD, TRACK_VISITORS, RETENTION, SHUTDOWN_TIMEOUT

Run without a subcommand to start the server.`

	validateDescription = `validate loads a content file the same way the server does and reports
every problem it finds: skill or language levels outside 0-100, project
images that are neither http(s) URLs nor root-relative paths, empty contact
links and unknown keys. Without an argument it checks CONTENT_PATH, or the
embedded default content when that is unset.`

	validateSummary = "%s: ok (%d skills, %d languages, %d projects, %d contact links)\n"
)
