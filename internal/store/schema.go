package store

// Current-generation schema. Every statement is idempotent: ensureSchema
// runs on each Open and must never alter or drop an existing table. A
// database written by the legacy deployment keeps its patients table
// (primary key column patient_id) untouched; reconciling the two
// generations happens at query time, not here.
const schemaDDL = `
-- Patient intake records
CREATE TABLE IF NOT EXISTS patients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  age INTEGER,
  sex TEXT,
  birthplace_city TEXT,
  birthplace_country TEXT,
  favorite_genre TEXT,
  favorite_musician TEXT,
  favorite_season TEXT,
  instruments TEXT,
  natural_elements TEXT,
  condition TEXT,
  difficulty_sleeping BOOLEAN,
  trouble_remembering BOOLEAN,
  forgets_everyday_things BOOLEAN,
  difficulty_recalling_old_memories BOOLEAN,
  memory_worse_than_year_ago BOOLEAN,
  visited_mental_health_professional BOOLEAN,
  extraversion REAL,
  agreeableness REAL,
  conscientiousness REAL,
  neuroticism REAL,
  openness REAL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- One row per recommendation run
CREATE TABLE IF NOT EXISTS therapy_sessions (
  id TEXT PRIMARY KEY,
  patient_id TEXT,
  session_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  recommendations_count INTEGER,
  session_data TEXT,
  FOREIGN KEY (patient_id) REFERENCES patients (id)
);

CREATE INDEX IF NOT EXISTS idx_sessions_patient ON therapy_sessions(patient_id);

-- One row per recommended song, exploded from the session payload
CREATE TABLE IF NOT EXISTS therapy_recommendations (
  patient_id TEXT,
  category TEXT,
  song_title TEXT,
  video_id TEXT,
  channel TEXT,
  rank INTEGER
);

CREATE INDEX IF NOT EXISTS idx_recommendations_patient ON therapy_recommendations(patient_id);

-- Append-only like/dislike/skip events
CREATE TABLE IF NOT EXISTS therapy_feedback (
  patient_id TEXT,
  feedback_type TEXT,
  reward REAL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_feedback_patient ON therapy_feedback(patient_id);

-- Big Five trait snapshots; the newest row per patient is the current one
CREATE TABLE IF NOT EXISTS big5_scores (
  patient_id TEXT,
  openness REAL,
  conscientiousness REAL,
  extraversion REAL,
  agreeableness REAL,
  neuroticism REAL,
  reinforcement_learning REAL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_big5_patient ON big5_scores(patient_id);
`
