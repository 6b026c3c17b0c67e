package mysql

// One row per named collection; the hotels live in the `hotels` row.
const createCollectionsSQL = `
CREATE TABLE IF NOT EXISTS hotel_collections (
  name       VARCHAR(64) NOT NULL PRIMARY KEY,
  doc        JSON        NOT NULL,
  updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const loadCollectionSQL = `
SELECT doc
FROM hotel_collections
WHERE name = ?
`

// Use VALUES(col) for broad compatibility with MySQL 5.7 and 8.0.
const saveCollectionSQL = `
INSERT INTO hotel_collections (name, doc)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  doc        = VALUES(doc),
  updated_at = CURRENT_TIMESTAMP
`
