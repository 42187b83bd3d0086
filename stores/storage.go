package stores

import (
	"os"

	"github.com/justArale/recipe-book-server/core"
	"github.com/justArale/recipe-book-server/stores/aws"
	"github.com/justArale/recipe-book-server/stores/blobfs"
	"github.com/justArale/recipe-book-server/stores/blobmem"
	"github.com/justArale/recipe-book-server/stores/memory"
	"github.com/justArale/recipe-book-server/stores/mongo"
	"github.com/justArale/recipe-book-server/stores/sqlite"
	"github.com/sirupsen/logrus"
)

// Store bundles the two entity stores a backend provides.
type Store interface {
	Users() core.UserStore
	Recipes() core.RecipeStore
}

// GetStore selects the entity-store backend from STORAGE_TYPE.
func GetStore() Store {
	storageType := os.Getenv("STORAGE_TYPE")
	var store Store

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "recipebook.db" // Default filename
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlite.NewStore(dataSourceName)
	case "mongo":
		uri := os.Getenv("MONGODB_URI")
		if uri == "" {
			uri = "mongodb://127.0.0.1:27017"
		}
		dbName := os.Getenv("MONGODB_DB")
		if dbName == "" {
			dbName = "recipe-book"
		}
		storageField["uri"] = uri
		storageField["db"] = dbName
		store = mongo.NewStore(uri, dbName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}

// GetBlobStore selects the image-blob backend from BLOB_STORAGE_TYPE.
func GetBlobStore() core.BlobStore {
	storageType := os.Getenv("BLOB_STORAGE_TYPE")
	var store core.BlobStore

	storageField := logrus.Fields{
		"blobStorageType": storageType,
	}

	switch storageType {
	case "s3":
		bucketName := os.Getenv("S3_BUCKET_NAME")
		if bucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 blob storage type")
		}
		storageField["bucketName"] = bucketName
		store = aws.NewBlobStore(bucketName, os.Getenv("S3_PUBLIC_URL"))
	case "filesystem":
		basePath := os.Getenv("BLOB_STORAGE_PATH")
		if basePath == "" {
			basePath = "./media" // Default path
		}
		storageField["basePath"] = basePath
		store = blobfs.NewBlobStore(basePath, "/media")
	default:
		store = blobmem.NewBlobStore()
		storageField["blobStorageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use blob storage")
	return store
}
