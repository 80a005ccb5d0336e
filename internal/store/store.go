// Package store persists digests, episodes, preferences, and predefined
// categories in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newslistener/internal/core"

	_ "github.com/mattn/go-sqlite3"
)

// maxErrorChars bounds the stored failure description on a digest.
const maxErrorChars = 255

// Store is the SQLite-backed persistence layer.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newslistener.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	digestsTable := `
	CREATE TABLE IF NOT EXISTS digests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		source_criteria TEXT NOT NULL,
		script_text TEXT,
		error_message TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	episodesTable := `
	CREATE TABLE IF NOT EXISTS episodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		digest_id INTEGER NOT NULL,
		audio_url TEXT,
		storage_path TEXT,
		language TEXT NOT NULL,
		audio_style TEXT NOT NULL,
		duration_seconds INTEGER,
		user_given_name TEXT,
		expires_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (digest_id, language, audio_style),
		FOREIGN KEY (digest_id) REFERENCES digests (id)
	);`

	preferencesTable := `
	CREATE TABLE IF NOT EXISTS user_preferences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		preferred_topics TEXT,
		custom_keywords TEXT,
		include_source_rss_urls TEXT,
		exclude_keywords TEXT,
		exclude_source_domains TEXT,
		default_language TEXT,
		default_audio_style TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	categoriesTable := `
	CREATE TABLE IF NOT EXISTS predefined_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		theme TEXT,
		region TEXT,
		rss_urls TEXT,
		topics TEXT,
		keywords TEXT,
		exclude_keywords TEXT,
		exclude_source_domains TEXT,
		language TEXT,
		audio_style TEXT,
		is_active INTEGER NOT NULL DEFAULT 1
	);`

	for _, table := range []string{digestsTable, episodesTable, preferencesTable, categoriesTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return s.seedCategories()
}

// seedCategories inserts the starter categories on first run.
func (s *Store) seedCategories() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM predefined_categories").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seeds := []core.PredefinedCategory{
		{
			Name:        "Últimas Noticias El País",
			Description: "Últimas noticias de El País",
			Theme:       "World News",
			Region:      "Spain",
			RSSURLs:     []string{"https://feeds.elpais.com/mrss-s/pages/ep/site/elpais.com/section/ultimas-noticias/portada"},
			Language:    "es",
			IsActive:    true,
		},
		{
			Name:        "Titulares del Día El País",
			Description: "Titulares del día de El País",
			Theme:       "World News",
			Region:      "Spain",
			RSSURLs:     []string{"https://feeds.elpais.com/mrss-s/pages/ep/site/elpais.com/portada"},
			Language:    "es",
			IsActive:    true,
		},
		{
			Name:        "Global Technology",
			Description: "Technology headlines from major outlets",
			Theme:       "Technology",
			Region:      "Global",
			RSSURLs: []string{
				"http://feeds.bbci.co.uk/news/technology/rss.xml",
				"https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml",
			},
			Language: "en",
			IsActive: true,
		},
	}
	for _, c := range seeds {
		if _, err := s.db.Exec(`
			INSERT INTO predefined_categories
			(name, description, theme, region, rss_urls, topics, keywords, exclude_keywords, exclude_source_domains, language, audio_style, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Name, c.Description, c.Theme, c.Region,
			marshalList(c.RSSURLs), marshalList(c.Topics), marshalList(c.Keywords),
			marshalList(c.ExcludeKeywords), marshalList(c.ExcludeSourceDomains),
			c.Language, c.AudioStyle, c.IsActive,
		); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Digests ---

// CreateDigest inserts a new digest in PENDING_SCRIPT state and returns it.
func (s *Store) CreateDigest(userID int64, canonicalCriteria string) (*core.Digest, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO digests (user_id, status, source_criteria, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, string(core.StatusPendingScript), canonicalCriteria, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &core.Digest{
		ID:             id,
		UserID:         userID,
		Status:         core.StatusPendingScript,
		SourceCriteria: canonicalCriteria,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GetDigest fetches a digest by id; nil when not found.
func (s *Store) GetDigest(id int64) (*core.Digest, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, status, source_criteria, script_text, error_message, created_at, updated_at
		FROM digests WHERE id = ?`, id)
	return scanDigest(row)
}

// UpdateDigestStatus moves a digest to a new state.
func (s *Store) UpdateDigestStatus(id int64, status core.DigestStatus) error {
	_, err := s.db.Exec(`UPDATE digests SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	return err
}

// SetDigestScript stores the generated script and moves the digest along.
func (s *Store) SetDigestScript(id int64, script string, status core.DigestStatus) error {
	_, err := s.db.Exec(`UPDATE digests SET script_text = ?, status = ?, updated_at = ? WHERE id = ?`,
		script, string(status), time.Now().UTC(), id)
	return err
}

// FailDigest marks a digest FAILED with a bounded-length error description.
// Earlier stage outputs (such as a generated script) are left intact.
func (s *Store) FailDigest(id int64, message string) error {
	if len(message) > maxErrorChars {
		message = message[:maxErrorChars]
	}
	_, err := s.db.Exec(`UPDATE digests SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(core.StatusFailed), message, time.Now().UTC(), id)
	return err
}

// ClearDigestError blanks a digest's error field before a new attempt.
func (s *Store) ClearDigestError(id int64) error {
	_, err := s.db.Exec(`UPDATE digests SET error_message = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}

// FindCachedDigest looks for the newest COMPLETED digest owned by the user
// with structurally-equal criteria and an episode carrying audio for the
// requested language and style.
func (s *Store) FindCachedDigest(userID int64, canonicalCriteria, language, style string) (*core.Digest, error) {
	row := s.db.QueryRow(`
		SELECT d.id, d.user_id, d.status, d.source_criteria, d.script_text, d.error_message, d.created_at, d.updated_at
		FROM digests d
		JOIN episodes e ON e.digest_id = d.id
		WHERE d.user_id = ?
		  AND d.source_criteria = ?
		  AND d.status = ?
		  AND e.language = ?
		  AND e.audio_style = ?
		  AND e.audio_url IS NOT NULL AND e.audio_url != ''
		ORDER BY d.created_at DESC
		LIMIT 1`,
		userID, canonicalCriteria, string(core.StatusCompleted), language, style)
	return scanDigest(row)
}

func scanDigest(row *sql.Row) (*core.Digest, error) {
	var d core.Digest
	var status string
	var script, errMsg sql.NullString
	err := row.Scan(&d.ID, &d.UserID, &status, &d.SourceCriteria, &script, &errMsg, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan digest: %w", err)
	}
	d.Status = core.DigestStatus(status)
	d.ScriptText = script.String
	d.ErrorMessage = errMsg.String
	return &d, nil
}

// --- Episodes ---

// GetEpisode fetches the episode for a (digest, language, style) tuple; nil
// when none exists.
func (s *Store) GetEpisode(digestID int64, language, style string) (*core.Episode, error) {
	row := s.db.QueryRow(episodeSelect+` WHERE digest_id = ? AND language = ? AND audio_style = ?`,
		digestID, language, style)
	return scanEpisode(row)
}

// GetEpisodeByID fetches an episode by id; nil when not found.
func (s *Store) GetEpisodeByID(id int64) (*core.Episode, error) {
	row := s.db.QueryRow(episodeSelect+` WHERE id = ?`, id)
	return scanEpisode(row)
}

const episodeSelect = `
	SELECT id, digest_id, audio_url, storage_path, language, audio_style,
	       duration_seconds, user_given_name, expires_at, created_at, updated_at
	FROM episodes`

// SaveEpisode inserts the episode, or updates the existing row for its
// (digest, language, style) tuple. The episode's ID is populated on return.
func (s *Store) SaveEpisode(ep *core.Episode) error {
	now := time.Now().UTC()
	existing, err := s.GetEpisode(ep.DigestID, ep.Language, ep.AudioStyle)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = s.db.Exec(`
			UPDATE episodes
			SET audio_url = ?, storage_path = ?, duration_seconds = ?, expires_at = ?, updated_at = ?
			WHERE id = ?`,
			ep.AudioURL, ep.StoragePath, ep.DurationSeconds, ep.ExpiresAt, now, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to update episode: %w", err)
		}
		ep.ID = existing.ID
		ep.CreatedAt = existing.CreatedAt
		ep.UpdatedAt = now
		return nil
	}

	res, err := s.db.Exec(`
		INSERT INTO episodes
		(digest_id, audio_url, storage_path, language, audio_style, duration_seconds, user_given_name, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.DigestID, ep.AudioURL, ep.StoragePath, ep.Language, ep.AudioStyle,
		ep.DurationSeconds, ep.UserGivenName, ep.ExpiresAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	ep.ID, err = res.LastInsertId()
	ep.CreatedAt = now
	ep.UpdatedAt = now
	return err
}

// DeleteEpisode removes an episode row.
func (s *Store) DeleteEpisode(id int64) error {
	_, err := s.db.Exec(`DELETE FROM episodes WHERE id = ?`, id)
	return err
}

// RenameEpisode sets the user-given display name. Audio location, language,
// and style are untouched.
func (s *Store) RenameEpisode(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE episodes SET user_given_name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("episode %d not found", id)
	}
	return err
}

// ListEpisodes returns all episodes belonging to a user's digests, newest
// first.
func (s *Store) ListEpisodes(userID int64) ([]core.Episode, error) {
	rows, err := s.db.Query(`
		SELECT e.id, e.digest_id, e.audio_url, e.storage_path, e.language, e.audio_style,
		       e.duration_seconds, e.user_given_name, e.expires_at, e.created_at, e.updated_at
		FROM episodes e
		JOIN digests d ON d.id = e.digest_id
		WHERE d.user_id = ?
		ORDER BY e.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []core.Episode
	for rows.Next() {
		ep, err := scanEpisodeRows(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *ep)
	}
	return episodes, rows.Err()
}

func scanEpisode(row *sql.Row) (*core.Episode, error) {
	var ep core.Episode
	var audioURL, storagePath, name sql.NullString
	var duration sql.NullInt64
	var expires sql.NullTime
	err := row.Scan(&ep.ID, &ep.DigestID, &audioURL, &storagePath, &ep.Language, &ep.AudioStyle,
		&duration, &name, &expires, &ep.CreatedAt, &ep.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}
	fillEpisode(&ep, audioURL, storagePath, name, duration, expires)
	return &ep, nil
}

func scanEpisodeRows(rows *sql.Rows) (*core.Episode, error) {
	var ep core.Episode
	var audioURL, storagePath, name sql.NullString
	var duration sql.NullInt64
	var expires sql.NullTime
	err := rows.Scan(&ep.ID, &ep.DigestID, &audioURL, &storagePath, &ep.Language, &ep.AudioStyle,
		&duration, &name, &expires, &ep.CreatedAt, &ep.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}
	fillEpisode(&ep, audioURL, storagePath, name, duration, expires)
	return &ep, nil
}

func fillEpisode(ep *core.Episode, audioURL, storagePath, name sql.NullString, duration sql.NullInt64, expires sql.NullTime) {
	ep.AudioURL = audioURL.String
	ep.StoragePath = storagePath.String
	ep.UserGivenName = name.String
	ep.DurationSeconds = int(duration.Int64)
	if expires.Valid {
		t := expires.Time
		ep.ExpiresAt = &t
	}
}

// --- User preferences ---

// GetUserPreference fetches a user's stored preferences; nil when none exist.
func (s *Store) GetUserPreference(userID int64) (*core.UserPreference, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, preferred_topics, custom_keywords, include_source_rss_urls,
		       exclude_keywords, exclude_source_domains, default_language, default_audio_style,
		       created_at, updated_at
		FROM user_preferences WHERE user_id = ?`, userID)

	var p core.UserPreference
	var topics, keywords, rssURLs, exKeywords, exDomains, lang, style sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &topics, &keywords, &rssURLs, &exKeywords, &exDomains,
		&lang, &style, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user preference: %w", err)
	}
	p.PreferredTopics = unmarshalList(topics.String)
	p.CustomKeywords = unmarshalList(keywords.String)
	p.IncludeSourceRSSURLs = unmarshalList(rssURLs.String)
	p.ExcludeKeywords = unmarshalList(exKeywords.String)
	p.ExcludeSourceDomains = unmarshalList(exDomains.String)
	p.DefaultLanguage = lang.String
	p.DefaultAudioStyle = style.String
	return &p, nil
}

// SaveUserPreference creates or replaces a user's stored preferences.
func (s *Store) SaveUserPreference(p *core.UserPreference) error {
	now := time.Now().UTC()
	existing, err := s.GetUserPreference(p.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = s.db.Exec(`
			UPDATE user_preferences
			SET preferred_topics = ?, custom_keywords = ?, include_source_rss_urls = ?,
			    exclude_keywords = ?, exclude_source_domains = ?,
			    default_language = ?, default_audio_style = ?, updated_at = ?
			WHERE user_id = ?`,
			marshalList(p.PreferredTopics), marshalList(p.CustomKeywords), marshalList(p.IncludeSourceRSSURLs),
			marshalList(p.ExcludeKeywords), marshalList(p.ExcludeSourceDomains),
			p.DefaultLanguage, p.DefaultAudioStyle, now, p.UserID)
		if err == nil {
			p.ID = existing.ID
		}
		return err
	}
	res, err := s.db.Exec(`
		INSERT INTO user_preferences
		(user_id, preferred_topics, custom_keywords, include_source_rss_urls,
		 exclude_keywords, exclude_source_domains, default_language, default_audio_style,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, marshalList(p.PreferredTopics), marshalList(p.CustomKeywords),
		marshalList(p.IncludeSourceRSSURLs), marshalList(p.ExcludeKeywords),
		marshalList(p.ExcludeSourceDomains), p.DefaultLanguage, p.DefaultAudioStyle, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert user preference: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// --- Predefined categories ---

// GetPredefinedCategory fetches a category by id; nil when not found.
func (s *Store) GetPredefinedCategory(id int64) (*core.PredefinedCategory, error) {
	row := s.db.QueryRow(categorySelect+` WHERE id = ?`, id)
	cat, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cat, err
}

const categorySelect = `
	SELECT id, name, description, theme, region, rss_urls, topics, keywords,
	       exclude_keywords, exclude_source_domains, language, audio_style, is_active
	FROM predefined_categories`

// ListPredefinedCategories returns categories, optionally active-only.
func (s *Store) ListPredefinedCategories(activeOnly bool) ([]core.PredefinedCategory, error) {
	query := categorySelect
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []core.PredefinedCategory
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *cat)
	}
	return cats, rows.Err()
}

func scanCategory(scan func(...any) error) (*core.PredefinedCategory, error) {
	var c core.PredefinedCategory
	var desc, theme, region, rssURLs, topics, keywords, exKeywords, exDomains, lang, style sql.NullString
	err := scan(&c.ID, &c.Name, &desc, &theme, &region, &rssURLs, &topics, &keywords,
		&exKeywords, &exDomains, &lang, &style, &c.IsActive)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.Theme = theme.String
	c.Region = region.String
	c.RSSURLs = unmarshalList(rssURLs.String)
	c.Topics = unmarshalList(topics.String)
	c.Keywords = unmarshalList(keywords.String)
	c.ExcludeKeywords = unmarshalList(exKeywords.String)
	c.ExcludeSourceDomains = unmarshalList(exDomains.String)
	c.Language = lang.String
	c.AudioStyle = style.String
	return &c, nil
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func unmarshalList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	_ = json.Unmarshal([]byte(data), &items)
	return items
}
