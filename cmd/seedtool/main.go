// Seedtool populates the member collection with sample records for manual
// testing against a scratch project.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"newfriends/dblayer"
	"newfriends/dbtypes"

	"cloud.google.com/go/firestore"
	"github.com/golang/glog"
)

var (
	dataProject = flag.String("data-project", "", "GCP project that contains the application state.")
)

var sampleMembers = []dbtypes.Member{
	{
		Name:             "장정환",
		Gender:           "남",
		BirthDate:        "2019-07-20",
		Category:         "새친구",
		RegistrationDate: "2025-07-06",
		District:         "1교구",
		Contact1:         "010-1234-5678;모",
		Education1:       "2025-07-13",
		Education2:       "2025-07-20",
	},
	{
		Name:             "민율",
		Gender:           "남",
		BirthDate:        "2020-06-08",
		Category:         "새친구",
		RegistrationDate: "2025-06-01",
		District:         "2교구",
		Education1:       "2025-06-08",
		Education2:       "2025-06-15",
		Education3:       "2025-06-22",
		Completion:       "2025-06-29",
		ReceivingTeacher: "김은혜",
	},
	{
		Name:             "이시아",
		Gender:           "여",
		BirthDate:        "2018-05-18",
		Category:         "방문",
		RegistrationDate: "2025-08-03",
		Contact1:         "010-9876-5432;부",
		Notes:            "언니와 함께 방문",
	},
}

func main() {
	flag.Parse()

	ctx := context.Background()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	db := dblayer.New(fstore, nil, dblayer.NoopBlobDeleter{}, "")

	base := time.Now().UnixMilli()
	for i, member := range sampleMembers {
		// Spread the minted IDs so the whole batch doesn't land on one
		// millisecond.
		member.ID = strconv.FormatInt(base+int64(i), 10)

		if err := db.Save(ctx, &member); err != nil {
			return fmt.Errorf("while saving sample member %q: %w", member.Name, err)
		}
		glog.Infof("Saved sample member %q as %s", member.Name, member.ID)
	}

	return nil
}
