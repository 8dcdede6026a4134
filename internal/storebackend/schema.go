package storebackend

// schema mirrors the recipe site's relational model. It is applied on
// startup when the users table is missing.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT UNIQUE NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS auth_tokens (
	token TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tags (
	id BIGSERIAL PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	slug TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS ingredients (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	measurement_unit TEXT NOT NULL,
	UNIQUE (name, measurement_unit)
);

CREATE TABLE IF NOT EXISTS recipes (
	id BIGSERIAL PRIMARY KEY,
	author_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	image TEXT,
	cooking_time INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	id BIGSERIAL PRIMARY KEY,
	recipe_id BIGINT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id BIGINT NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
	amount TEXT NOT NULL,
	UNIQUE (recipe_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS recipe_tags (
	id BIGSERIAL PRIMARY KEY,
	recipe_id BIGINT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	UNIQUE (recipe_id, tag_id)
);

CREATE TABLE IF NOT EXISTS favorites (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	recipe_id BIGINT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, recipe_id)
);
`
